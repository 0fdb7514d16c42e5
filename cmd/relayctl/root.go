package main

import "github.com/spf13/cobra"

// NewRootCommand creates the relayctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "relayctl",
		Short: "Manage relay-graphql demo databases",
		Long: `relayctl prepares the database served by relay-graphql and decodes
the values it hands out.

It shares the server's configuration flags, environment variables and
config file, so a command run with the same settings targets the same
database the server reads.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSeedCommand(),
		newCursorCommand(),
		newVersionCommand(),
	)
	return root
}
