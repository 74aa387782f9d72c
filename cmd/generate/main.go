package main

import (
	"fmt"
	"os"

	"github.com/drakos74/kcurves/infra/config"
	"github.com/drakos74/kcurves/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <config.yaml>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run(os.Args[1]); err != nil {
		log.Error().Err(err).Str("config", os.Args[1]).Msg("generation failed")
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if !cfg.IsVerbose() {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	r, err := pipeline.Generate(cfg)
	if err != nil {
		return err
	}
	log.Warn().
		Str("id", r.ID).
		Str("dir", r.Dir).
		Int("files", len(r.Files)).
		Msg("generated")
	return nil
}
