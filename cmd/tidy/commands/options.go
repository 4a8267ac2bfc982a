package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/cybergodev/tidy"
	"github.com/spf13/cobra"
)

func newOptionsCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "options [name...]",
		Short: "List the recognized tidy options",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = tidy.OptionNames()
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTYPE\tDEFAULT\tVALUES")
			for _, name := range names {
				info, ok := tidy.LookupOption(name)
				if !ok {
					return &ExitError{Code: ExitErrors, Err: fmt.Errorf("unknown tidy option '%s'", name)}
				}
				values := "-"
				if len(info.Values) > 0 {
					values = strings.Join(info.Values, ", ")
				}
				def := info.Default
				if def == "" {
					def = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Name, info.Type, def, values)
				if verbose {
					fmt.Fprintf(tw, "\t%s\t\t\n", info.Doc)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "describe each option")
	return cmd
}
