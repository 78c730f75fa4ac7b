package driver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"whileplus/interpreter-go/pkg/runtime"
)

func repositoryRoot(t testing.TB) string {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		t.Fatalf("resolve repository root: %v", err)
	}
	return root
}

func TestFixtureCorpus(t *testing.T) {
	root := filepath.Join(repositoryRoot(t), "fixtures")
	fixtures, err := CollectFixtures(root)
	if err != nil {
		t.Fatalf("CollectFixtures: %v", err)
	}
	if len(fixtures) == 0 {
		t.Fatalf("no fixtures found under %s", root)
	}
	for _, fx := range fixtures {
		fx := fx
		t.Run(fx.Name, func(t *testing.T) {
			report := RunFixture(context.Background(), fx)
			if !report.Passed() {
				t.Fatalf("%s (%s):\n  %s", fx.Name, fx.Description, strings.Join(report.Failures, "\n  "))
			}
		})
	}
}

func TestCollectFixturesNamesAndOrder(t *testing.T) {
	fixtures, err := CollectFixtures(filepath.Join(repositoryRoot(t), "fixtures", "basics"))
	if err != nil {
		t.Fatalf("CollectFixtures: %v", err)
	}
	var names []string
	for _, fx := range fixtures {
		names = append(names, fx.Name)
	}
	want := "division_by_zero,effects_before_throw,print_tagged,try_binds"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("names = %q, want %q", got, want)
	}
}

func TestRunFixtureReportsMismatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FixtureManifestName), `
description: deliberately wrong expectations
expect:
  exception: {int: 2}
  store:
    x: {int: 2}
  log:
    - nothing
`)
	writeFile(t, filepath.Join(dir, "program.yml"), `
type: Sequence
first: {type: Assign, name: x, value: {type: IntLiteral, value: 1}}
second: {type: Print, prefix: "x=", expression: {type: Var, name: x}}
`)
	fx, err := LoadFixture(dir)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	report := RunFixture(context.Background(), fx)
	if report.Passed() {
		t.Fatalf("expected failures")
	}
	want := []string{
		"exception: expected IntVal 2, got none",
		"store: expected {x: IntVal 2}, got {x: IntVal 1}",
		`log: expected ["nothing"], got ["x=IntVal 1"]`,
	}
	if len(report.Failures) != len(want) {
		t.Fatalf("failures = %q", report.Failures)
	}
	for idx := range want {
		if report.Failures[idx] != want[idx] {
			t.Fatalf("failure[%d] = %q, want %q", idx, report.Failures[idx], want[idx])
		}
	}
}

func TestRunFixtureUnexpectedException(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FixtureManifestName), `expect: {}`)
	writeFile(t, filepath.Join(dir, "program.yml"), `{type: Throw, expression: {type: BoolLiteral, value: true}}`)
	fx, err := LoadFixture(dir)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	report := RunFixture(context.Background(), fx)
	if len(report.Failures) != 1 || report.Failures[0] != "exception: expected none, got BoolVal True" {
		t.Fatalf("failures = %q", report.Failures)
	}
	if got, _ := report.Result.Uncaught(); !runtime.Equal(got, runtime.Bool(true)) {
		t.Fatalf("result exception = %v", got)
	}
}

func TestRunFixtureSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FixtureManifestName), `
skip: true
expect:
  exception: {int: 1}
`)
	writeFile(t, filepath.Join(dir, "program.yml"), `type: Skip`)
	fx, err := LoadFixture(dir)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	report := RunFixture(context.Background(), fx)
	if !report.Skipped || !report.Passed() {
		t.Fatalf("report = %#v", report)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	cases := []struct {
		name     string
		manifest string
		program  string
		want     string
	}{
		{"missing program", `expect: {}`, "", "has no program file"},
		{"unknown field", "expect: {}\nresult: 1", "type: Skip", "field result not found"},
		{"bad exception", "expect:\n  exception: {int: 1.5}", "type: Skip", "expect.exception"},
		{"bad store", "expect:\n  store: {x: 3}", "type: Skip", "expect.store.x"},
		{"bad program", `expect: {}`, "type: Nope", `unsupported statement type "Nope"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, FixtureManifestName), tc.manifest)
			if tc.program != "" {
				writeFile(t, filepath.Join(dir, "program.yml"), tc.program)
			}
			_, err := LoadFixture(dir)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoadFixtureCustomEntry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FixtureManifestName), `
entry: src/main.json
expect:
  log: ["hi IntVal 1"]
`)
	writeFile(t, filepath.Join(dir, "src", "main.json"), `{"type": "Print", "prefix": "hi ", "expression": {"type": "IntLiteral", "value": 1}}`)
	fx, err := LoadFixture(dir)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if report := RunFixture(context.Background(), fx); !report.Passed() {
		t.Fatalf("failures = %q", report.Failures)
	}
}
