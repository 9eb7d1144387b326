package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"newsportal/internal/database"
	"newsportal/internal/store"
	"newsportal/internal/taxonomy"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrated()
			if err != nil {
				return err
			}
			defer db.Close()
			slog.Info("migrations applied")
			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert the default root categories into an empty table",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrated()
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Seed(db)
		},
	}

	backfillDryRun bool
	backfillCmd    = &cobra.Command{
		Use:   "backfill",
		Short: "Assign category ids to articles that only carry a legacy category name",
		RunE:  runBackfill,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify the category tree has no cycles or dangling parents",
		RunE:  runCheck,
	}
)

// openMigrated connects to PostgreSQL and applies pending migrations.
func openMigrated() (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func runBackfill(cmd *cobra.Command, args []string) error {
	db, err := openMigrated()
	if err != nil {
		return err
	}
	defer db.Close()

	aliases, err := taxonomy.LoadAliasFile(cfg.LegacyAliasFile)
	if err != nil {
		return fmt.Errorf("load legacy aliases: %w", err)
	}

	b := taxonomy.NewBackfiller(store.NewCategoryStore(db), store.NewArticleStore(db), aliases)
	report, err := b.Run(cmd.Context(), backfillDryRun)
	if err != nil {
		return err
	}
	printBackfill(cmd.OutOrStdout(), report)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	forest, err := store.NewCategoryStore(db).Forest(cmd.Context())
	if err != nil {
		return err
	}
	return checkForest(cmd.OutOrStdout(), forest)
}

// checkForest reports corrupt and dangling nodes and fails when there are
// any.
func checkForest(w io.Writer, f taxonomy.Forest) error {
	corrupt := f.Corrupt()
	dangling := f.Dangling()

	fmt.Fprintf(w, "categories: %d\n", len(f))
	for _, id := range corrupt {
		fmt.Fprintf(w, "cycle:    %s\n", id)
	}
	for _, id := range dangling {
		fmt.Fprintf(w, "dangling: %s -> %s\n", id, *f[id])
	}

	if n := len(corrupt) + len(dangling); n > 0 {
		return fmt.Errorf("category tree is corrupt: %d cyclic, %d dangling", len(corrupt), len(dangling))
	}
	fmt.Fprintln(w, "ok")
	return nil
}

// printBackfill writes a backfill report as aligned columns.
func printBackfill(w io.Writer, r *taxonomy.BackfillReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEGACY\tCATEGORY\tVIA\tARTICLES")
	for _, m := range r.Matched {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.Name, m.CategorySlug, m.Via, m.Articles)
	}
	for _, u := range r.Unmatched {
		fmt.Fprintf(tw, "%s\t-\tunmatched\t%d\n", u.Name, u.Articles)
	}
	tw.Flush()

	if r.DryRun {
		fmt.Fprintf(w, "dry run: %d matched, %d unmatched, nothing written\n", len(r.Matched), len(r.Unmatched))
		return
	}
	fmt.Fprintf(w, "%d matched, %d unmatched, %d articles updated\n", len(r.Matched), len(r.Unmatched), r.Updated)
}
