package json

import (
	"path/filepath"

	"github.com/drakos74/clust/internal/storage"
	"github.com/rs/zerolog/log"
)

// BlobStorage stores every key as a json file under <path>/<table>.
type BlobStorage struct {
	path  string
	table string
	debug bool
}

func (s BlobStorage) Store(k storage.Key, value interface{}) error {
	p := filepath.Join(s.path, s.table)
	err := Save(p, k.Path(), value)
	if err == nil && s.debug {
		log.Info().Str("path", p).Str("file", k.Path()).Msg("stored json file")
	}
	return err
}

func (s BlobStorage) Load(k storage.Key, value interface{}) error {
	return Load(filepath.Join(s.path, s.table), k.Path(), value)
}

// NewJsonBlob creates a json file storage for the given table rooted at path.
func NewJsonBlob(path, table string, debug bool) *BlobStorage {
	return &BlobStorage{
		path:  path,
		table: table,
		debug: debug,
	}
}
