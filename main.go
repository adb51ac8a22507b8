package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/admon/ledger-mirror/config"
	"github.com/admon/ledger-mirror/db"
	"github.com/admon/ledger-mirror/logger"
)

const programName = "admon"

var configFile string

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger mirror tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			conn, err := db.Connect(db.ConnectArgs(cfg.DB))
			if err != nil {
				return err
			}

			database := db.NewDB(conn, log)
			defer db.CloseDB(database)

			if err := db.Migrate(cmd.Context(), database); err != nil {
				return err
			}

			log.Info("schema migrated")
			return nil
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Ledger mirror and transaction oracle of the prediction protocol",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c",
		"config.json", "configuration file path, empty to use environment only")

	rootCmd.AddCommand(serveCommand(), migrateCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
