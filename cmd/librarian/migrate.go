package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/BilyiPJATK/librarystore/catalog/postgresengine"
	"github.com/BilyiPJATK/librarystore/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	pool, err := cfg.DB.NewPGXPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
	if err != nil {
		return err
	}

	if err = store.EnsureSchema(ctx); err != nil {
		return err
	}

	logger.Info("schema is up to date")

	return nil
}
