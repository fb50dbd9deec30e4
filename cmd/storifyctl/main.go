package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ahmedoumar/storify/internal/accounts"
	"github.com/ahmedoumar/storify/internal/db"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "storifyctl",
		Short:         "Admin utility for the Storify account database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "storify.db", "Path to the SQLite database file")

	cmd.AddCommand(newMigrateCommand(&dbPath))
	cmd.AddCommand(newAccountsCommand(&dbPath))
	return cmd
}

func newMigrateCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), *dbPath, func(ctx context.Context, database *gorm.DB) error {
				if err := db.Migrate(ctx, database); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newAccountsCommand(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account maintenance operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAccountsExistsCommand(dbPath))
	cmd.AddCommand(newAccountsDeleteCommand(dbPath))
	return cmd
}

func newAccountsExistsCommand(dbPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "exists",
		Short: "Check whether an account exists for an email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), *dbPath, func(ctx context.Context, database *gorm.DB) error {
				store := accounts.NewStore(database)
				exists, err := store.Exists(ctx, addr)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), exists)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAccountsDeleteCommand(dbPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), *dbPath, func(ctx context.Context, database *gorm.DB) error {
				store := accounts.NewStore(database)
				if err := store.Delete(ctx, addr); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", addr)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func withDB(ctx context.Context, path string, fn func(context.Context, *gorm.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	database, err := db.Connect(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(database) }()
	return fn(ctx, database)
}
