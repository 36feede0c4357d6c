package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registers the schema migrations with pkg/migration.
	_ "github.com/bazarromero/catalog/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Bazar El Romero catalog backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(syncCmd)

	// Operations
	rootCmd.AddCommand(credentialsCmd)
}
