package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
)

const cliToolVersion = "whilep 0.1.0-dev"

const (
	exitOK       = 0
	exitFailure  = 1
	exitUncaught = 3
)

var errManifestNotFound = errors.New("whileplus.yml not found")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitFailure
	}

	opts, remaining, err := parseGlobalOptions(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	if len(remaining) == 0 {
		printUsage()
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return exitOK
	case "run":
		return runProgram(ctx, remaining[1:], opts)
	case "test":
		return runTest(ctx, remaining[1:], opts)
	case "suites":
		return runSuites(remaining[1:], opts)
	default:
		return runProgram(ctx, remaining, opts)
	}
}
