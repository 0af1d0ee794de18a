package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"bookmarks/internal/config"
	"bookmarks/internal/database"
	"bookmarks/internal/logger"
	"bookmarks/internal/render"
	"bookmarks/internal/repository"
	"bookmarks/internal/service"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

// app is the state shared by every subcommand
type app struct {
	dbPath string
	cfg    *config.Config
	logger *logger.Logger
	db     *sql.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "bookmarksctl",
		Short:        "Maintenance commands for the bookmarks database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "database path (defaults to DATABASE_PATH)")

	rootCmd.AddCommand(a.migrateCmd(), a.exportCmd(), a.importCmd(), a.importClippingsCmd())
	return rootCmd
}

// open loads configuration and opens the migrated database
func (a *app) open() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.dbPath != "" {
		cfg.DatabasePath = a.dbPath
	}
	a.cfg = cfg

	// Log to stderr so export output can be piped
	a.logger = logger.NewWithWriter(cfg.Logging, os.Stderr)

	db, err := database.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return err
	}
	a.db = db
	return nil
}

func (a *app) transferService() *service.TransferService {
	return service.NewTransferService(
		repository.NewBookmarkRepository(a.db, a.logger),
		repository.NewCategoryRepository(a.db, a.logger),
		repository.NewTagRepository(a.db, a.logger),
		a.logger,
	)
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// open already migrated
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", a.cfg.DatabasePath)
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a full JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.transferService().Export(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(env); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d bookmarks to %s\n", len(env.Bookmarks), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to stdout)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import bookmarks from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			result, err := a.transferService().ImportPayload(cmd.Context(), a.cfg.DefaultUser, data)
			if err != nil {
				return err
			}
			printImportResult(cmd.OutOrStdout(), result.Imported, result.Errors)
			return nil
		},
	}
}

func (a *app) importClippingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-clippings <dir>",
		Short: "Import markdown clippings with url front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, failed, err := render.NewMarkdown().ReadClippings(args[0])
			if err != nil {
				return err
			}

			names := make([]string, 0, len(failed))
			for name := range failed {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", name, failed[name])
			}

			result := a.transferService().Import(cmd.Context(), a.cfg.DefaultUser, records)
			printImportResult(cmd.OutOrStdout(), result.Imported, result.Errors+len(failed))
			return nil
		},
	}
}

func printImportResult(w io.Writer, imported, errors int) {
	fmt.Fprintf(w, "Successfully imported %d bookmarks with %d errors\n", imported, errors)
}
