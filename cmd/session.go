package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/observer/internal/formatter"
	"github.com/zjrosen/observer/internal/log"
	"github.com/zjrosen/observer/internal/observer"
	"github.com/zjrosen/observer/internal/tracing"
)

// session is one holder plus the streams its command reports to.
// Formatter output goes to out; non-fatal failures go to errOut.
type session struct {
	ctx    context.Context
	holder *observer.Holder
	out    io.Writer
	errOut io.Writer
	color  bool
	tracer trace.Tracer
}

func newSession(ctx context.Context, name string, out, errOut io.Writer) (*session, error) {
	h, err := observer.NewHolder(name)
	if err != nil {
		return nil, err
	}
	return &session{
		ctx:    ctx,
		holder: h,
		out:    out,
		errOut: errOut,
		color:  cfg.Color,
		tracer: tracer,
	}, nil
}

// formatter builds a formatter of kind, styled and traced as configured.
func (s *session) formatter(kind string) (formatter.Formatter, error) {
	var opts []formatter.Option
	if s.color {
		opts = append(opts, formatter.WithStyle(formatter.LabelStyle(s.out, kind)))
	}
	f, err := formatter.New(kind, s.out, opts...)
	if err != nil {
		return nil, err
	}
	if s.tracer != nil {
		return tracing.Wrap(s.tracer, f, tracing.WithParent(s.ctx)), nil
	}
	return f, nil
}

// subscribe creates and registers one formatter per kind, in order.
func (s *session) subscribe(kinds []string) error {
	for _, kind := range kinds {
		f, err := s.formatter(kind)
		if err != nil {
			return err
		}
		s.add(f)
	}
	return nil
}

func (s *session) add(o formatter.Formatter) {
	if err := s.holder.Add(o); err != nil {
		fmt.Fprintf(s.errOut, "Failed to add: %v\n", err)
	}
}

func (s *session) remove(o formatter.Formatter) {
	if err := s.holder.Remove(o); err != nil {
		fmt.Fprintf(s.errOut, "Failed to remove: %v\n", err)
	}
}

func (s *session) set(input any) {
	if err := s.holder.Set(input); err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
}

// setArg applies one command-line value.
func (s *session) setArg(arg string) {
	log.Debug(log.CatCLI, "Applying value", "arg", arg)
	s.set(parseArg(arg))
}

func (s *session) printHolder() {
	fmt.Fprintln(s.out, s.holder)
}

// parseArg turns a command-line word into the value handed to Set.
// Decimal literals become floats so "15.8" truncates to 15 the same way a
// float input does; every other word stays a string.
func parseArg(arg string) any {
	arg = strings.TrimSpace(arg)
	if _, err := strconv.Atoi(arg); err == nil {
		return arg
	}
	if f, err := strconv.ParseFloat(arg, 64); err == nil && strings.ContainsAny(arg, ".eE") {
		return f
	}
	return arg
}
