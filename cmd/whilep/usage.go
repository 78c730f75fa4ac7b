package main

import (
	"fmt"
	"os"

	"whileplus/interpreter-go/pkg/driver"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  whilep [options] run <program.yml|program.json|name|->")
	fmt.Fprintln(os.Stderr, "  whilep [options] <program.yml|program.json>")
	fmt.Fprintln(os.Stderr, "  whilep [options] test [dir|suite ...]")
	fmt.Fprintln(os.Stderr, "  whilep suites fetch [suite ...]")
	fmt.Fprintln(os.Stderr, "  whilep --version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  --log-level=debug|info|warn|error  log records written to stderr (default warn)")
	fmt.Fprintln(os.Stderr, "  --trace                             print assignments, prints, raises and catches")
	fmt.Fprintln(os.Stderr, "  --max-steps=N                       abort runs after N statements (0 = unlimited)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Fetched suites are cached under $%s (default ~/.whileplus).\n", driver.HomeEnv)
}
