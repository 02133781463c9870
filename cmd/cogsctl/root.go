package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cogsctl",
		Short:         "Import and export store COGS spreadsheets against the configured database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	return cmd
}
