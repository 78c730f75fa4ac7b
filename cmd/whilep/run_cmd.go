package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"whileplus/interpreter-go/pkg/driver"
	"whileplus/interpreter-go/pkg/interpreter"
	"whileplus/interpreter-go/pkg/runtime"
)

func runProgram(ctx context.Context, args []string, opts cliOptions) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "whilep run expects exactly one program")
		printUsage()
		return exitFailure
	}
	logger := opts.logger()

	manifest, err := loadNearestManifest(args[0])
	if err != nil && !errors.Is(err, errManifestNotFound) {
		fmt.Fprintf(os.Stderr, "whilep run: %v\n", err)
		return exitFailure
	}
	prog, err := resolveProgram(args[0], manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "whilep run: %v\n", err)
		return exitFailure
	}

	interp := interpreter.New(opts.interpreterOptions(manifest, logger)...)
	res, err := interp.ExecuteContext(ctx, prog.Store, prog.Body)
	fmt.Fprint(os.Stdout, res.Log())
	fmt.Fprintf(os.Stderr, "store: %s\n", res.Store)
	logger.Debug("run finished", "run_id", res.RunID, "steps", res.Steps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "whilep run: %v\n", err)
		return exitFailure
	}
	if v, ok := res.Uncaught(); ok {
		fmt.Fprintf(os.Stderr, "uncaught exception: %s\n", runtime.Show(v))
		return exitUncaught
	}
	return exitOK
}

// resolveProgram accepts "-" for stdin, a path to a program document, or the
// name of a program declared in the manifest.
func resolveProgram(arg string, manifest *driver.Manifest) (*driver.Program, error) {
	if arg == "-" {
		return driver.ReadProgram(os.Stdin, driver.FormatYAML)
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return driver.LoadProgram(arg)
	}
	if manifest != nil {
		if rel, ok := manifest.Programs[arg]; ok {
			return driver.LoadProgram(manifest.Resolve(rel))
		}
	}
	return nil, fmt.Errorf("program %q not found", arg)
}

// loadNearestManifest looks for whileplus.yml above start, falling back to
// the working directory.
func loadNearestManifest(start string) (*driver.Manifest, error) {
	candidates := []string{}
	if start != "" && start != "-" {
		candidates = append(candidates, start)
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, wd)
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if path, ok := driver.FindManifest(candidate); ok {
			return driver.LoadManifest(path)
		}
	}
	return nil, errManifestNotFound
}
