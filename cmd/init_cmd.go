package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/observer/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a default config file",
	Long: `Write the default configuration to PATH (default: .observer/config.yaml).

When --observers is given, the written file lists those kinds instead of
the defaults.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := localConfigPath
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	if cmd.Flags().Changed("observers") {
		if err := config.SaveObservers(path, cfg.Observers); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
