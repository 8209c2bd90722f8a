package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/scrumebox/scrume/internal/keystore"
	"github.com/scrumebox/scrume/internal/legacy"
	"github.com/scrumebox/scrume/internal/output"
	"github.com/scrumebox/scrume/internal/scrum"
	"github.com/scrumebox/scrume/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui         *output.UI
	logger     *zap.Logger
	controller *scrum.Controller

	verbose bool
)

// Set from main via Execute.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "scrume",
	Short: "Scrume - encrypted local scrum management",
	Long: `scrume manages scrum projects on a single device: team members,
sprints, a story backlog, and a board, all persisted in one
encrypted-at-rest data file.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/scrume/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "scrume")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SCRUME")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultDataDir := filepath.Join(home, ".config", "scrume")

	viper.SetDefault("data_dir", defaultDataDir)
	viper.SetDefault("data_file", "scrume_data.encrypted")
	viper.SetDefault("legacy_db", "scrume.db")
	viper.SetDefault("keyring.service", keystore.DefaultService)
	viper.SetDefault("keyring.account", keystore.DefaultAccount)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	// The storage layers log through zap; keep them quiet unless the
	// user asked for detail. Failures that matter to the user surface
	// through returned errors either way.
	if verbose {
		logger, _ = zap.NewDevelopment()
	} else {
		logger = zap.NewNop()
	}
}

func dataFilePath() string {
	return filepath.Join(viper.GetString("data_dir"), viper.GetString("data_file"))
}

func legacyDBPath() string {
	return filepath.Join(viper.GetString("data_dir"), viper.GetString("legacy_db"))
}

// getController returns the shared controller, initializing storage on
// first call: key retrieval, legacy migration, then the initial load.
func getController() (*scrum.Controller, error) {
	if controller != nil {
		return controller, nil
	}

	keys := keystore.New(
		viper.GetString("keyring.service"),
		viper.GetString("keyring.account"),
		logger)
	st := store.NewEncryptedStore(dataFilePath(), keys, logger)

	if err := legacy.MigrateIfNeeded(legacyDBPath(), st, logger); err != nil {
		ui.Warning("Legacy data migration failed: %v", err)
	}

	c := scrum.New(st, logger)
	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	controller = c
	return controller, nil
}
