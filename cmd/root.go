package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/observer/internal/config"
	"github.com/zjrosen/observer/internal/log"
	"github.com/zjrosen/observer/internal/tracing"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	verbose   bool
	cfg       config.Config
	configErr error

	tracer   trace.Tracer // nil unless tracing is enabled
	cleanups []func()
)

var rootCmd = &cobra.Command{
	Use:   "observer",
	Short: "Watch an integer value through pluggable formatters",
	Long: `observer holds a named integer value and notifies every registered
formatter, in registration order, each time the value changes.

Run without a subcommand to play the demo walkthrough.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runDemo,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .observer/config.yaml or ~/.config/observer/config.yaml)")
	pf.StringP("name", "n", "", "label of the value holder")
	pf.StringSliceP("observers", "o", nil, "formatter kinds to register, in order (bin, dec, hex, oct)")
	pf.Bool("color", false, "style formatter labels")
	pf.String("log-file", "", "write debug log entries to this file")
	pf.BoolVarP(&debugFlag, "debug", "d", false, "enable debug logging")
	pf.BoolVarP(&verbose, "verbose", "v", false, "echo log entries to stderr")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("name", defaults.Name)
	viper.SetDefault("observers", defaults.Observers)
	viper.SetDefault("color", defaults.Color)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	// Bind flags to viper
	pf := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("name", pf.Lookup("name"))
	_ = viper.BindPFlag("observers", pf.Lookup("observers"))
	_ = viper.BindPFlag("color", pf.Lookup("color"))
	_ = viper.BindPFlag("log.file", pf.Lookup("log-file"))

	viper.SetEnvPrefix("OBSERVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .observer/config.yaml (current directory)
		// 2. ~/.config/observer/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "observer"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		// A missing file is only fine when nothing was asked for explicitly.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
			return
		}
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		configErr = fmt.Errorf("decoding config: %w", err)
	}
}

const localConfigPath = ".observer/config.yaml"

// setup validates configuration and starts logging and tracing for the
// command about to run. Everything started here is released by Execute.
func setup(cmd *cobra.Command, _ []string) error {
	if configErr != nil {
		return configErr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := initLogging(cmd.ErrOrStderr()); err != nil {
		return err
	}
	log.Debug(log.CatCLI, "Running command", "command", cmd.Name(), "config", viper.ConfigFileUsed())

	provider, err := tracing.NewProvider(config.ResolveTracing(cfg.Tracing))
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	if provider.Enabled() {
		tracer = provider.Tracer()
	}

	ctx, span := provider.Tracer().Start(cmd.Context(), tracing.SpanPrefixCLI+cmd.Name(),
		trace.WithAttributes(attribute.String(tracing.AttrCommand, cmd.CommandPath())))
	cmd.SetContext(ctx)

	cleanups = append(cleanups, func() {
		span.End()
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
		}
	})
	return nil
}

func initLogging(stderr io.Writer) error {
	debug := debugFlag || os.Getenv("OBSERVER_DEBUG") != ""
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = os.Getenv("OBSERVER_LOG")
	}

	switch {
	case logPath != "":
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		cleanups = append(cleanups, cleanup)
	case debug:
		log.InitWriter(stderr)
	case verbose:
		log.InitWriter(nil)
	default:
		return nil
	}
	cleanups = append(cleanups, log.Reset)

	level, _ := log.ParseLevel(cfg.Log.Level) // validated in setup
	log.SetMinLevel(level)

	// With --debug and no file the entries already go to stderr.
	if verbose && (logPath != "" || !debug) {
		cleanups = append(cleanups, echoLog(stderr))
	}
	return nil
}

// echoLog copies log entries to w until the returned stop function runs.
// Stopping reports how many entries the echo fell behind on.
func echoLog(w io.Writer) func() {
	ctx, cancel := context.WithCancel(context.Background())
	listener := log.NewListener(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			event, ok := listener.Next(ctx)
			if !ok {
				return
			}
			_, _ = io.WriteString(w, event.Payload)
		}
	}()
	return func() {
		cancel()
		<-done
		if n := log.Dropped(); n > 0 {
			fmt.Fprintf(w, "%d log entries were not echoed\n", n)
		}
	}
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
	tracer = nil
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
