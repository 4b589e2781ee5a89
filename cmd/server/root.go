package main

import "github.com/spf13/cobra"

var (
	Version   = "dev"
	GitCommit = ""
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalog-server",
		Short: "Wash package catalog and admin API",
		Long: `Serves the public wash package catalog, the admin dashboard and the
JSON API behind both.

With no subcommand the server is started, same as "catalog-server serve".`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	versionTmpl := "catalog-server version {{.Version}}"
	if GitCommit != "" {
		versionTmpl += " (commit " + GitCommit + ")"
	}
	root.SetVersionTemplate(versionTmpl + "\n")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newHashPasswordCmd(),
	)
	return root
}
