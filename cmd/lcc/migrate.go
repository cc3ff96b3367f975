package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lightcurve-lab/internal/storage/migrations"
	"lightcurve-lab/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  `Create the star table in PostgreSQL and the trial tables in ClickHouse, for each DSN given.`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if postgresDSN == "" && clickhouseDSN == "" {
		return fmt.Errorf("set --postgres-dsn and/or --clickhouse-dsn")
	}

	if postgresDSN != "" {
		pool, err := postgres.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer conn.Close()
		logger.Info("clickhouse migrations applied")
	}
	return nil
}
