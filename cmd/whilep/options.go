package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"whileplus/interpreter-go/pkg/driver"
	"whileplus/interpreter-go/pkg/interpreter"
	"whileplus/interpreter-go/pkg/runtime"
)

type cliOptions struct {
	logLevel slog.Level
	trace    bool
	// maxSteps is -1 when the flag was not given, so the manifest limit applies.
	maxSteps int
}

func parseGlobalOptions(args []string) (cliOptions, []string, error) {
	opts := cliOptions{logLevel: slog.LevelWarn, maxSteps: -1}
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--log-level", "--max-steps":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, nil, fmt.Errorf("%s expects a value", name)
				}
				value = args[i+1]
				i++
			}
			if err := opts.set(name, value); err != nil {
				return opts, nil, err
			}
		case "--trace":
			opts.trace = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return opts, remaining, nil
}

func (o *cliOptions) set(name, value string) error {
	switch name {
	case "--log-level":
		level, err := parseLogLevel(value)
		if err != nil {
			return err
		}
		o.logLevel = level
	case "--max-steps":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("--max-steps expects a non-negative integer, got '%s'", value)
		}
		o.maxSteps = n
	}
	return nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "":
		return slog.LevelWarn, fmt.Errorf("--log-level expects a value")
	default:
		return slog.LevelWarn, fmt.Errorf("unknown --log-level value '%s' (expected debug, info, warn or error)", value)
	}
}

func (o cliOptions) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: o.logLevel}))
}

// stepLimit prefers the flag over the manifest's limits.max_steps.
func (o cliOptions) stepLimit(manifest *driver.Manifest) int {
	if o.maxSteps >= 0 {
		return o.maxSteps
	}
	if manifest != nil {
		return manifest.Limits.MaxSteps
	}
	return 0
}

func (o cliOptions) interpreterOptions(manifest *driver.Manifest, logger *slog.Logger) []interpreter.Option {
	opts := []interpreter.Option{interpreter.WithLogger(logger)}
	if limit := o.stepLimit(manifest); limit > 0 {
		opts = append(opts, interpreter.WithStepLimit(limit))
	}
	if o.trace {
		opts = append(opts, interpreter.WithTrace(func(ev interpreter.TraceEvent) {
			writeTraceEvent(os.Stderr, ev)
		}))
	}
	return opts
}

func writeTraceEvent(w io.Writer, ev interpreter.TraceEvent) {
	var b strings.Builder
	fmt.Fprintf(&b, "trace %s", ev.Event)
	if !ev.Span.IsZero() {
		fmt.Fprintf(&b, " at %s", ev.Span)
	}
	if ev.Name != "" {
		fmt.Fprintf(&b, " %s", ev.Name)
	}
	if ev.Value != nil {
		fmt.Fprintf(&b, " = %s", runtime.Show(ev.Value))
	}
	if ev.Text != "" {
		fmt.Fprintf(&b, " %q", ev.Text)
	}
	fmt.Fprintln(w, b.String())
}
