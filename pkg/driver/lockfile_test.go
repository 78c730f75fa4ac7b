package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLockfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	lock := NewLockfile(" while-demo ", "whilep test")
	lock.Put(&LockedSuite{Name: "zeta", Version: "v2@abc", Source: "git+https://example.com/z.git@abc", Checksum: "c1"})
	lock.Put(&LockedSuite{Name: "alpha", Version: " def ", Source: "git+https://example.com/a.git@def", Checksum: "c2"})
	lock.Put(&LockedSuite{Name: "zeta", Version: "v3@123", Source: "git+https://example.com/z.git@123", Checksum: "c3"})

	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Project != "while-demo" || loaded.Tool != "whilep test" || loaded.Generated == "" {
		t.Fatalf("metadata not preserved: %#v", loaded)
	}
	if len(loaded.Suites) != 2 {
		t.Fatalf("suites = %#v", loaded.Suites)
	}
	if loaded.Suites[0].Name != "alpha" || loaded.Suites[0].Version != "def" {
		t.Fatalf("first suite = %#v", loaded.Suites[0])
	}
	zeta, ok := loaded.Find("zeta")
	if !ok || zeta.Version != "v3@123" || zeta.Checksum != "c3" {
		t.Fatalf("zeta entry = %#v", zeta)
	}
	if _, ok := loaded.Find("missing"); ok {
		t.Fatalf("Find reported a missing suite")
	}
}

func TestWriteLockfileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	lock := NewLockfile("demo", "whilep")
	lock.Generated = "2024-01-01T00:00:00Z"
	lock.Put(&LockedSuite{Name: "core", Version: "abc", Source: "git+/tmp/core@abc", Checksum: "ff"})
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{
		"project: demo\n",
		"tool: whilep\n",
		"suites:\n  - name: core\n    version: abc\n",
		"    source: git+/tmp/core@abc\n",
		"    checksum: ff\n",
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("lockfile missing %q:\n%s", want, data)
		}
	}
	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Generated != "2024-01-01T00:00:00Z" {
		t.Fatalf("Generated = %q", loaded.Generated)
	}
}

func TestLoadLockfileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	writeFile(t, path, `
project: demo
packages: []
`)
	if _, err := LoadLockfile(path); err == nil || !strings.Contains(err.Error(), "lockfile: parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestWriteLockfileRequiresPath(t *testing.T) {
	if err := WriteLockfile(NewLockfile("demo", "whilep"), ""); err == nil {
		t.Fatalf("expected missing path error")
	}
	if err := WriteLockfile(nil, "x"); err == nil {
		t.Fatalf("expected nil lockfile error")
	}
}
