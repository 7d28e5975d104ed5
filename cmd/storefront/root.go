package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func createRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront session and settings service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			c := config.New()
			logging.Setup(cmd.ErrOrStderr(), c.GetEnv(), c.GetLogLevel())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")

	rootCmd.AddCommand(
		serveCmd(),
		sessionCmd(),
		refreshCmd(),
		settingsCmd(),
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	return rootCmd
}

// loadEnvFile loads path into the environment without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("no env file")
			return nil
		}
		return err
	}
	return nil
}

// defaultServiceURL points the client commands at the locally configured port.
func defaultServiceURL() string {
	if url := os.Getenv("STOREFRONT_URL"); url != "" {
		return url
	}
	return "http://localhost" + config.New().GetPort()
}
