package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, contents)
	return path
}

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: while-demo
programs:
  fact: programs/fact.yml
suites:
  core: fixtures
  extra:
    path: ../extra
  remote:
    git: https://example.com/suites.git
    tag: v1.2.0
    dir: cases
limits:
  max_steps: 5000
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if got, want := manifest.Name, "while-demo"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if got := manifest.Programs["fact"]; got != "programs/fact.yml" {
		t.Fatalf("programs.fact = %q", got)
	}
	if got := strings.Join(manifest.SuiteNames(), ","); got != "core,extra,remote" {
		t.Fatalf("SuiteNames = %q", got)
	}
	if core := manifest.Suites["core"]; core == nil || core.Path != "fixtures" || core.IsGit() {
		t.Fatalf("shorthand suite not parsed: %#v", core)
	}
	remote := manifest.Suites["remote"]
	if remote == nil || !remote.IsGit() || remote.Tag != "v1.2.0" || remote.Dir != "cases" {
		t.Fatalf("git suite not parsed: %#v", remote)
	}
	if manifest.Limits.MaxSteps != 5000 {
		t.Fatalf("MaxSteps = %d", manifest.Limits.MaxSteps)
	}
	if got, want := manifest.Resolve("fixtures"), filepath.Join(filepath.Dir(path), "fixtures"); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
	if got, want := manifest.LockfilePath(), filepath.Join(filepath.Dir(path), LockfileName); got != want {
		t.Fatalf("LockfilePath = %q, want %q", got, want)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := writeManifest(t, `
suites:
  both:
    path: a
    git: https://example.com/a.git
    rev: abc
  neither: {}
  unpinned:
    git: https://example.com/b.git
  stray:
    path: local
    branch: main
  escape:
    git: https://example.com/c.git
    tag: v1
    branch: main
    dir: ../outside
limits:
  max_steps: -1
`)
	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	wantIssues := []string{
		"name must be provided",
		"suites.both: path suites cannot also specify git",
		"suites.escape: rev, tag, and branch are mutually exclusive",
		`suites.escape: dir "../outside" must stay inside the checkout`,
		"suites.neither: must specify path or git",
		"suites.stray: rev, tag, and branch apply only to git suites",
		"suites.unpinned: git suites require rev, tag, or branch",
		"limits.max_steps must not be negative",
	}
	for _, want := range wantIssues {
		found := false
		for _, issue := range verr.Issues {
			if issue == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing issue %q in %q", want, verr.Issues)
		}
	}
	if !strings.HasPrefix(verr.Error(), "manifest validation failed:") {
		t.Fatalf("Error() = %q", verr.Error())
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  app: main.yml
`)
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "field targets not found") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadManifestEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "name: demo")
	nested := filepath.Join(root, "a", "b")
	writeFile(t, filepath.Join(nested, "prog.yml"), "type: Skip")

	got, ok := FindManifest(filepath.Join(nested, "prog.yml"))
	if !ok {
		t.Fatalf("FindManifest did not find %s", ManifestName)
	}
	if want := filepath.Join(root, ManifestName); got != want {
		t.Fatalf("FindManifest = %q, want %q", got, want)
	}
}
