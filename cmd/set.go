package cmd

import (
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set VALUE...",
	Short: "Apply values in order and print each notification",
	Long: `Register the configured formatters, then apply each VALUE in order.

Integer words are parsed as integers, decimal words as floats (truncated
toward zero). Values that are not numbers are reported and skipped; the
holder keeps its previous value.

Example:
  observer set 3 21 hello 15.8
  observer set -o hex,oct --name counter 255`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

var setSummary bool

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().BoolVar(&setSummary, "summary", false, "print the holder after every value")
}

func runSet(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context(), cfg.Name, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := s.subscribe(cfg.Observers); err != nil {
		return err
	}

	for _, arg := range args {
		s.setArg(arg)
		if setSummary {
			s.printHolder()
		}
	}
	if !setSummary {
		s.printHolder()
	}
	return nil
}
