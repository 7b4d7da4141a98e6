// Command librarian runs the library service: an HTTP API over the
// Postgres-backed catalog, plus schema migration and data seeding.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/BilyiPJATK/librarystore/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "librarian",
		Short: "Library management service",
		Long:  "Manages the library catalog, its members and the borrowing lifecycle over a Postgres-backed store.",
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
}
