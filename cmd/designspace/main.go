package main

import (
	"fmt"
	"os"

	"designspace/domain/schema"
	"designspace/internal"
	"designspace/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// env carries what every command needs once configuration is loaded
type env struct {
	cfg    *config.Config
	schema *schema.Schema
	logger *internal.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var envFile, schemaFile, logLevel string

	rootCmd := &cobra.Command{
		Use:           "designspace",
		Short:         "Latent design-space analysis of cognitive-control experiments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if schemaFile != "" {
				cfg.Data.SchemaFile = schemaFile
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			e.cfg = cfg

			if cfg.Log.JSON {
				e.logger = internal.NewJSONLogger(internal.ParseLogLevel(cfg.Log.Level))
			} else {
				e.logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
			}

			if cfg.Data.SchemaFile != "" {
				e.schema, err = schema.Load(cfg.Data.SchemaFile)
			} else {
				e.schema, err = schema.Default()
			}
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.PersistentFlags().StringVar(&schemaFile, "schema", "", "Schema YAML file (defaults to the built-in schema)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug or trace")

	rootCmd.AddCommand(
		newAnalyzeCmd(e),
		newClassifyCmd(e),
		newServeCmd(e),
		newMigrateCmd(e),
	)
	return rootCmd
}
