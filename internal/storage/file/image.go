package file

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	clust_math "github.com/drakos74/clust/internal/math"
	"github.com/drakos74/clust/internal/model"
)

const (
	// RowsPerImage is the number of pixel rows following the category line.
	RowsPerImage = 6
)

var (
	ErrFormat = errors.New("invalid image format")
)

// ParseImages reads at most n records from r.
// Each record is a '<marker><category>' line, e.g. '#0', followed by RowsPerImage
// lines of whitespace separated numbers, concatenated into one vector.
// The marker is any single character that cannot start a number.
// n <= 0 reads all records.
func ParseImages(r io.Reader, n int) (model.Dataset, error) {
	data := model.NewDataset()

	scanner := bufio.NewScanner(r)
	var (
		line   int
		record int
		dim    int
	)
	next := func() (string, bool) {
		for scanner.Scan() {
			line++
			txt := strings.TrimSpace(scanner.Text())
			if txt != "" {
				return txt, true
			}
		}
		return "", false
	}

	for n <= 0 || record < n {
		header, ok := next()
		if !ok {
			break
		}
		if !isMarker(header) {
			return data, fmt.Errorf("record %d line %d: expected category marker but got '%s': %w", record, line, header, ErrFormat)
		}
		_, size := utf8.DecodeRuneInString(header)
		c, err := strconv.Atoi(strings.TrimSpace(header[size:]))
		if err != nil {
			return data, fmt.Errorf("record %d line %d: could not parse category '%s': %w", record, line, header, ErrFormat)
		}
		category := model.Category(c)
		if !category.Valid() {
			return data, fmt.Errorf("record %d line %d: unknown category %d: %w", record, line, c, ErrFormat)
		}

		x := make(clust_math.Vector, 0, dim)
		for row := 0; row < RowsPerImage; row++ {
			txt, ok := next()
			if !ok {
				return data, fmt.Errorf("record %d: truncated after %d rows: %w", record, row, ErrFormat)
			}
			if isMarker(txt) {
				return data, fmt.Errorf("record %d line %d: truncated after %d rows: %w", record, line, row, ErrFormat)
			}
			for _, field := range strings.Fields(txt) {
				f, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return data, fmt.Errorf("record %d line %d: could not parse '%s': %w", record, line, field, ErrFormat)
				}
				x = append(x, f)
			}
		}

		if dim == 0 {
			dim = len(x)
		} else if len(x) != dim {
			return data, fmt.Errorf("record %d: expected %d values but got %d: %w", record, dim, len(x), ErrFormat)
		}

		if err := data.Add(category, x); err != nil {
			return data, fmt.Errorf("record %d: %w", record, err)
		}
		record++
	}

	if err := scanner.Err(); err != nil {
		return data, fmt.Errorf("could not read images: %w", err)
	}
	return data, nil
}

// isMarker reports if the line starts with a category marker instead of a number.
func isMarker(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	switch {
	case unicode.IsDigit(r), unicode.IsSpace(r):
		return false
	case r == '-', r == '+', r == '.', r == utf8.RuneError:
		return false
	}
	return true
}

// LoadImages parses at most n records from the file at path.
func LoadImages(path string, n int) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not open '%s': %w", path, err)
	}
	defer f.Close()

	data, err := ParseImages(f, n)
	if err != nil {
		return data, fmt.Errorf("could not parse '%s': %w", path, err)
	}
	return data, nil
}
