package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"whileplus/interpreter-go/pkg/driver"
)

type testSummary struct {
	passed  int
	failed  int
	skipped int
}

func runTest(ctx context.Context, args []string, opts cliOptions) int {
	logger := opts.logger()

	manifest, err := loadNearestManifest("")
	if err != nil && !errors.Is(err, errManifestNotFound) {
		fmt.Fprintf(os.Stderr, "whilep test: %v\n", err)
		return exitFailure
	}

	targets := args
	if len(targets) == 0 {
		if manifest == nil || len(manifest.Suites) == 0 {
			fmt.Fprintln(os.Stderr, "whilep test: no fixture directories given and no suites declared in whileplus.yml")
			return exitFailure
		}
		targets = manifest.SuiteNames()
	}

	locator, err := newSuiteLocator(manifest, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "whilep test: %v\n", err)
		return exitFailure
	}

	var summary testSummary
	for _, target := range targets {
		dir, err := locator.dir(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "whilep test: %v\n", err)
			return exitFailure
		}
		fixtures, err := driver.CollectFixtures(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "whilep test: %v\n", err)
			return exitFailure
		}
		if len(fixtures) == 0 {
			fmt.Fprintf(os.Stdout, "whilep test: no fixtures found in %s\n", dir)
			continue
		}
		for _, fx := range fixtures {
			report := driver.RunFixture(ctx, fx, opts.interpreterOptions(manifest, logger)...)
			printReport(target, report, &summary)
		}
	}

	if err := locator.save(); err != nil {
		fmt.Fprintf(os.Stderr, "whilep test: %v\n", err)
		return exitFailure
	}

	fmt.Fprintf(os.Stdout, "%d passed, %d failed, %d skipped\n", summary.passed, summary.failed, summary.skipped)
	if summary.failed > 0 {
		return exitFailure
	}
	return exitOK
}

func printReport(target string, report driver.FixtureReport, summary *testSummary) {
	name := target + "/" + report.Name
	switch {
	case report.Skipped:
		summary.skipped++
		fmt.Fprintf(os.Stdout, "skip %s\n", name)
	case report.Passed():
		summary.passed++
		fmt.Fprintf(os.Stdout, "ok   %s\n", name)
	default:
		summary.failed++
		fmt.Fprintf(os.Stdout, "FAIL %s\n", name)
		for _, failure := range report.Failures {
			fmt.Fprintf(os.Stdout, "     %s\n", failure)
		}
	}
}

// suiteLocator maps test targets to fixture directories, fetching git suites
// on demand and recording them in the lockfile.
type suiteLocator struct {
	manifest *driver.Manifest
	fetcher  *driver.SuiteFetcher
	lock     *driver.Lockfile
	before   string
}

func newSuiteLocator(manifest *driver.Manifest, logger *slog.Logger) (*suiteLocator, error) {
	loc := &suiteLocator{manifest: manifest}
	if manifest == nil {
		return loc, nil
	}
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		return nil, err
	}
	loc.fetcher = driver.NewSuiteFetcher(cacheDir, logger)
	lock, err := loadOrCreateLockfile(manifest)
	if err != nil {
		return nil, err
	}
	loc.lock = lock
	loc.before = lockSignature(lock)
	return loc, nil
}

func (l *suiteLocator) dir(target string) (string, error) {
	if l.manifest != nil {
		if _, ok := l.manifest.Suites[target]; ok {
			return l.fetcher.Locate(l.manifest, target, l.lock)
		}
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("%q is neither a directory nor a declared suite", target)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", target)
	}
	return filepath.Abs(target)
}

func (l *suiteLocator) save() error {
	if l.lock == nil || lockSignature(l.lock) == l.before {
		return nil
	}
	return driver.WriteLockfile(l.lock, l.manifest.LockfilePath())
}

func loadOrCreateLockfile(manifest *driver.Manifest) (*driver.Lockfile, error) {
	path := manifest.LockfilePath()
	lock, err := driver.LoadLockfile(path)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	lock = driver.NewLockfile(manifest.Name, cliToolVersion)
	lock.Path = path
	return lock, nil
}

func lockSignature(lock *driver.Lockfile) string {
	var b strings.Builder
	for _, suite := range lock.Suites {
		fmt.Fprintf(&b, "%s|%s|%s|%s\n", suite.Name, suite.Version, suite.Source, suite.Checksum)
	}
	return b.String()
}
