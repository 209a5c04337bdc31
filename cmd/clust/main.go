package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {
	err := newApp(os.Stdout).Run(os.Args)
	if err != nil {
		log.Error().Err(err).Msg("clust failed")
		os.Exit(1)
	}
}
