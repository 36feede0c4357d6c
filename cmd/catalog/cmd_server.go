package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bazarromero/catalog/app/routes"
	"github.com/bazarromero/catalog/internal/bootstrap"
	"github.com/bazarromero/catalog/internal/kernel"
	"github.com/bazarromero/catalog/internal/server"
)

// catalog serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		return server.Start(cmd.Context(), app.Kernel().Handler())
	},
}

// catalog route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		k := kernel.NewHTTPKernel(routes.Dependencies{}, kernel.Options{})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
