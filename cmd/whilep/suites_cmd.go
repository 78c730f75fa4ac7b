package main

import (
	"fmt"
	"os"

	"whileplus/interpreter-go/pkg/driver"
)

func runSuites(args []string, opts cliOptions) int {
	if len(args) == 0 || args[0] != "fetch" {
		fmt.Fprintln(os.Stderr, "whilep suites expects the 'fetch' subcommand")
		printUsage()
		return exitFailure
	}
	return runSuitesFetch(args[1:], opts)
}

func runSuitesFetch(names []string, opts cliOptions) int {
	logger := opts.logger()
	manifest, err := loadNearestManifest("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "whilep suites fetch: %v\n", err)
		return exitFailure
	}
	if len(names) == 0 {
		names = manifest.SuiteNames()
	}

	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "whilep suites fetch: %v\n", err)
		return exitFailure
	}
	fetcher := driver.NewSuiteFetcher(cacheDir, logger)
	lock, err := loadOrCreateLockfile(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "whilep suites fetch: %v\n", err)
		return exitFailure
	}
	lock.Project = manifest.Name
	lock.Tool = cliToolVersion

	fetched := 0
	for _, name := range names {
		spec, ok := manifest.Suites[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "whilep suites fetch: suite %q is not declared in %s\n", name, manifest.Path)
			return exitFailure
		}
		if !spec.IsGit() {
			fmt.Fprintf(os.Stdout, "local %s -> %s\n", name, manifest.Resolve(spec.Path))
			continue
		}
		locked, _, err := fetcher.Fetch(name, spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "whilep suites fetch: %v\n", err)
			return exitFailure
		}
		lock.Put(locked)
		fetched++
		fmt.Fprintf(os.Stdout, "fetched %s %s\n", name, locked.Version)
	}

	if fetched > 0 {
		lock.Generated = ""
		if err := driver.WriteLockfile(lock, manifest.LockfilePath()); err != nil {
			fmt.Fprintf(os.Stderr, "whilep suites fetch: %v\n", err)
			return exitFailure
		}
	}
	return exitOK
}
