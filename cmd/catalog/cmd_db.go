package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bazarromero/catalog/config"
	"github.com/bazarromero/catalog/database/seeders"
	"github.com/bazarromero/catalog/pkg/database"
	"github.com/bazarromero/catalog/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// catalog migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
		return migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Run()
	},
}

// catalog migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
		return migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Rollback()
	},
}

// catalog migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		return migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Status()
	},
}

// catalog seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(cmd.Context(), database.DB, cmd.OutOrStdout())
	},
}
