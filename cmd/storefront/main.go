// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the storefront CLI. It drives live
// search, recommendations and interaction telemetry against the storefront
// backend, and manages the local product catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/storefront/internal/logging"
	"github.com/pdiddy/storefront/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	// logger is configured from the persistent flags before any command runs.
	logger = zerolog.Nop()
)

// rootCmd is the base command for the storefront CLI.
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Search, recommendations and interaction telemetry for the storefront",
	Long: `storefront is a command-line client for the storefront backend. A single
query input drives either live product search or personalized recommendations;
results are cached per (mode, query) and unknown recommended items fall back to
placeholder details.

Use session for an interactive input loop, or the one-shot browse, search,
recommend and interact commands. The catalog command manages the local product
catalog used to resolve recommended item ids.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		console, _ := cmd.Flags().GetBool("console-log")
		l, err := logging.New(os.Stderr, level, console)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug().Strs("keys", s.Keys()).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./storefront.yaml or ~/.config/storefront/storefront.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().Bool("console-log", true, "human-readable log output instead of JSON lines")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("storefront")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "storefront"))
		}
	}

	viper.SetEnvPrefix("STOREFRONT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
