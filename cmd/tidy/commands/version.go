package commands

import (
	"strings"

	"github.com/cybergodev/tidy"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("tidy version %s (engines: %s)\n", tidy.Version, strings.Join(tidy.Engines(), ", "))
		},
	}
}
