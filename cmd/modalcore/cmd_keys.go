package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/modalcore/internal/input/key"
)

// newKeysCmd creates the keys subcommand
func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <keys>",
		Short: "Print the keys a key string is read as",
		Long: `Split a key string written in Vim notation, such as "d2w<C-r>", into keys and
print one key per line. A "<" that does not open a known key is printed as <lt>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range key.Split(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
