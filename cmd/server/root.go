package main

import (
	"github.com/dmitrijs2005/gophauth/internal/buildinfo"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gophauth-server",
		Short: "gophauth authentication API",
		Long: `gophauth-server issues and verifies session tokens. Usage:

	gophauth-server serve [-a addr] [-d dsn] [-u postgres|memory] ...
	gophauth-server migrate [-d dsn]
`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	})
	return root
}
