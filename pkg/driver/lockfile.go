package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockfile models the whileplus.lock contents.
type Lockfile struct {
	Path      string
	Project   string
	Generated string
	Tool      string
	Suites    []*LockedSuite
}

// LockedSuite pins a fetched fixture suite to a commit.
type LockedSuite struct {
	Name     string
	Version  string
	Source   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the project.
func NewLockfile(project, tool string) *Lockfile {
	return &Lockfile{
		Project:   strings.TrimSpace(project),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Suites:    []*LockedSuite{},
	}
}

// Find returns the pinned entry for a suite.
func (l *Lockfile) Find(name string) (*LockedSuite, bool) {
	if l == nil {
		return nil, false
	}
	for _, suite := range l.Suites {
		if suite != nil && suite.Name == name {
			return suite, true
		}
	}
	return nil, false
}

// Put adds or replaces the entry for suite.Name.
func (l *Lockfile) Put(suite *LockedSuite) {
	if suite == nil {
		return
	}
	for idx, existing := range l.Suites {
		if existing != nil && existing.Name == suite.Name {
			l.Suites[idx] = suite
			return
		}
	}
	l.Suites = append(l.Suites, suite)
}

// LoadLockfile parses whileplus.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

func (l *Lockfile) normalize() {
	l.Project = strings.TrimSpace(l.Project)
	l.Tool = strings.TrimSpace(l.Tool)
	suites := l.Suites[:0]
	for _, suite := range l.Suites {
		if suite == nil {
			continue
		}
		suite.Name = strings.TrimSpace(suite.Name)
		suite.Version = strings.TrimSpace(suite.Version)
		suite.Source = strings.TrimSpace(suite.Source)
		suite.Checksum = strings.TrimSpace(suite.Checksum)
		suites = append(suites, suite)
	}
	sort.SliceStable(suites, func(i, j int) bool {
		return suites[i].Name < suites[j].Name
	})
	l.Suites = suites
}

type lockfileDisk struct {
	Project   string      `yaml:"project"`
	Generated string      `yaml:"generated"`
	Tool      string      `yaml:"tool"`
	Suites    []suiteDisk `yaml:"suites"`
}

type suiteDisk struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum"`
}

func (l *Lockfile) toDisk() lockfileDisk {
	suites := make([]suiteDisk, 0, len(l.Suites))
	for _, suite := range l.Suites {
		suites = append(suites, suiteDisk{
			Name:     suite.Name,
			Version:  suite.Version,
			Source:   suite.Source,
			Checksum: suite.Checksum,
		})
	}
	return lockfileDisk{
		Project:   l.Project,
		Generated: l.Generated,
		Tool:      l.Tool,
		Suites:    suites,
	}
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Project:   d.Project,
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Suites:    make([]*LockedSuite, 0, len(d.Suites)),
	}
	for _, suite := range d.Suites {
		lock.Suites = append(lock.Suites, &LockedSuite{
			Name:     suite.Name,
			Version:  suite.Version,
			Source:   suite.Source,
			Checksum: suite.Checksum,
		})
	}
	lock.normalize()
	return lock
}
