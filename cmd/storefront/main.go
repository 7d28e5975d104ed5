package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := createRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}
