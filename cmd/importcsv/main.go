package main

import (
	"fmt"
	"log"
	"os"

	"yamdb/internal/config"
	"yamdb/internal/database"
	"yamdb/internal/importer"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		dir     string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:           "importcsv",
		Short:         "Load the category, genre, title, user, review and comment CSV fixtures",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(config.Load(), dir, migrate)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "static/data", "Directory holding the CSV fixtures")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Create or update tables before importing")
	return cmd
}

func run(cfg config.Config, dir string, migrate bool) error {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	if migrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	results, err := importer.New(db).Run(dir)
	if err != nil {
		return err
	}
	for _, r := range results {
		log.Printf("%-16s rows: %d, imported: %d", r.File, r.Rows, r.Imported)
	}
	return nil
}
