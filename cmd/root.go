package cmd

import (
	"fmt"
	"os"

	"timesheet/config"
	"timesheet/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	configPath string

	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Timesheet tracking service",
	Long: `timesheet serves the timesheet HTTP API: employees log daily hours,
managers approve or reject them and read aggregate reports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		log, err := newLogger(loaded.Log)
		if err != nil {
			return err
		}
		cfg, logger = loaded, log
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml if present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
}

func newLogger(c config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	switch c.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unsupported log format %q", c.Format)
	}
	return log, nil
}

// openDatabase connects and brings the schema up to date.
func openDatabase(cmd *cobra.Command) (*gorm.DB, error) {
	db, err := database.Open(database.Options{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.URL,
		LogLevel: cfg.Database.LogLevel,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(cmd.Context(), db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}
