package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/observer/internal/log"
	"github.com/zjrosen/observer/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Set the value from a file every time it changes",
	Long: `Watch FILE and, after each burst of writes settles, apply its trimmed
content as the new value. The current content is applied once at start
when the file exists. Stop with Ctrl-C.

Example:
  observer watch ./value.txt &
  echo 21 > ./value.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runWatchCmd,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cfg.Name, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := s.subscribe(cfg.Observers); err != nil {
		return err
	}

	wcfg := watcher.DefaultConfig(args[0])
	wcfg.DebounceDur = cfg.Watch.Debounce
	return runWatch(ctx, s, wcfg)
}

// runWatch feeds file content into the session until ctx is done.
// Updates are applied from this goroutine only, so the holder is never
// touched concurrently.
func runWatch(ctx context.Context, s *session, wcfg watcher.Config) error {
	w, err := watcher.New(wcfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}
	log.Info(log.CatWatcher, "Watching value file", "path", wcfg.Path, "holder", s.holder.Name())

	apply := func() {
		data, err := os.ReadFile(wcfg.Path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(s.errOut, "Error: %v\n", err)
			}
			return
		}
		s.setArg(string(data))
	}

	apply()
	for {
		select {
		case <-ctx.Done():
			log.Info(log.CatWatcher, "Stopped watching", "path", wcfg.Path)
			return nil
		case <-changes:
			apply()
		}
	}
}
