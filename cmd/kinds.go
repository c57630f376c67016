package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/observer/internal/formatter"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the available formatter kinds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, kind := range formatter.Kinds() {
			fmt.Fprintln(cmd.OutOrStdout(), kind)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
