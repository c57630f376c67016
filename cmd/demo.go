package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/observer/internal/formatter"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Play the hex/binary formatter walkthrough",
	Long: `Play a scripted walkthrough: subscribe a hex and a binary formatter,
change the value a few times, unsubscribe, retry failing operations, then
set an invalid and a fractional value.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd.Context(), cfg.Name, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return playDemo(s)
}

func playDemo(s *session) error {
	hex, err := s.formatter(formatter.KindHex)
	if err != nil {
		return err
	}
	bin, err := s.formatter(formatter.KindBinary)
	if err != nil {
		return err
	}

	step := func(actions ...func()) {
		for _, a := range actions {
			a()
		}
		s.printHolder()
		fmt.Fprintln(s.out)
	}

	step()
	step(func() { s.add(hex) }, func() { s.set(3) })
	step(func() { s.add(bin) }, func() { s.set(21) })
	step(func() { s.remove(hex) }, func() { s.set(40) })
	step(func() { s.remove(hex) }, func() { s.add(bin) }, func() { s.set("hello") })
	s.set(15.8)
	s.printHolder()
	return nil
}
