package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"whileplus/interpreter-go/pkg/interpreter"
	"whileplus/interpreter-go/pkg/runtime"
)

// FixtureManifestName marks a directory as a fixture case.
const FixtureManifestName = "manifest.yml"

var defaultEntries = []string{"program.yml", "program.yaml", "program.json"}

// Fixture is a program paired with the outcome it must produce.
type Fixture struct {
	Name        string
	Dir         string
	Description string
	Skip        bool
	MaxSteps    int
	Program     *Program
	Expect      Expectation
}

// Expectation lists what a fixture run is compared against. Exception nil
// means the run must complete normally; Store and Log are compared only when
// set.
type Expectation struct {
	Exception runtime.Value
	Store     *runtime.Store
	Log       []string
	CheckLog  bool
	// Error, when set, is a substring the host error must contain.
	Error string
}

type fixtureManifest struct {
	Description string `yaml:"description"`
	Entry       string `yaml:"entry"`
	Skip        bool   `yaml:"skip"`
	MaxSteps    int    `yaml:"max_steps"`
	Expect      struct {
		Exception any            `yaml:"exception"`
		Store     map[string]any `yaml:"store"`
		Log       *[]string      `yaml:"log"`
		Error     string         `yaml:"error"`
	} `yaml:"expect"`
}

// LoadFixture reads manifest.yml and the program it names from dir.
func LoadFixture(dir string) (*Fixture, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("fixture: resolve %s: %w", dir, err)
	}
	manifestPath := filepath.Join(abs, FixtureManifestName)
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %s: %w", manifestPath, err)
	}
	defer file.Close()

	var raw fixtureManifest
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("fixture: parse %s: %w", manifestPath, err)
	}

	fx := &Fixture{
		Name:        filepath.Base(abs),
		Dir:         abs,
		Description: strings.TrimSpace(raw.Description),
		Skip:        raw.Skip,
		MaxSteps:    raw.MaxSteps,
	}
	if raw.Expect.Exception != nil {
		val, err := DecodeValue(raw.Expect.Exception)
		if err != nil {
			return nil, fmt.Errorf("fixture: %s: expect.exception: %w", manifestPath, err)
		}
		fx.Expect.Exception = val
	}
	if raw.Expect.Store != nil {
		store, err := DecodeStore(raw.Expect.Store)
		if err != nil {
			return nil, fmt.Errorf("fixture: %s: expect.%w", manifestPath, err)
		}
		fx.Expect.Store = &store
	}
	if raw.Expect.Log != nil {
		fx.Expect.Log = append([]string{}, (*raw.Expect.Log)...)
		fx.Expect.CheckLog = true
	}
	fx.Expect.Error = strings.TrimSpace(raw.Expect.Error)

	entry, err := fixtureEntry(abs, raw.Entry)
	if err != nil {
		return nil, err
	}
	prog, err := LoadProgram(entry)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	fx.Program = prog
	return fx, nil
}

func fixtureEntry(dir, entry string) (string, error) {
	if entry = strings.TrimSpace(entry); entry != "" {
		return filepath.Join(dir, filepath.FromSlash(entry)), nil
	}
	for _, candidate := range defaultEntries {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("fixture: %s has no program file (tried %s)", dir, strings.Join(defaultEntries, ", "))
}

// CollectFixtures walks root and loads every directory holding manifest.yml,
// in lexical order. Fixture names are paths relative to root.
func CollectFixtures(root string) ([]*Fixture, error) {
	var fixtures []*Fixture
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if _, err := os.Stat(filepath.Join(path, FixtureManifestName)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		fx, err := LoadFixture(path)
		if err != nil {
			return err
		}
		if rel, err := filepath.Rel(root, path); err == nil && rel != "." {
			fx.Name = filepath.ToSlash(rel)
		}
		fixtures = append(fixtures, fx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fixtures, nil
}

// FixtureReport is the outcome of running one fixture.
type FixtureReport struct {
	Name     string
	Skipped  bool
	Result   interpreter.Result
	Err      error
	Failures []string
}

// Passed reports whether the run matched every expectation.
func (r FixtureReport) Passed() bool {
	return r.Skipped || len(r.Failures) == 0
}

// RunFixture executes fx and compares the outcome with its expectation.
func RunFixture(ctx context.Context, fx *Fixture, opts ...interpreter.Option) FixtureReport {
	report := FixtureReport{Name: fx.Name}
	if fx.Skip {
		report.Skipped = true
		return report
	}
	if fx.MaxSteps > 0 {
		opts = append(opts, interpreter.WithStepLimit(fx.MaxSteps))
	}
	res, err := interpreter.New(opts...).ExecuteContext(ctx, fx.Program.Store, fx.Program.Body)
	report.Result = res
	report.Err = err
	report.Failures = compareOutcome(fx.Expect, res, err)
	return report
}

func compareOutcome(want Expectation, res interpreter.Result, err error) []string {
	var failures []string
	switch {
	case want.Error != "" && err == nil:
		failures = append(failures, fmt.Sprintf("error: expected %q, run completed", want.Error))
	case want.Error != "" && !strings.Contains(err.Error(), want.Error):
		failures = append(failures, fmt.Sprintf("error: expected %q, got %q", want.Error, err.Error()))
	case want.Error == "" && err != nil:
		failures = append(failures, fmt.Sprintf("error: unexpected %v", err))
	}

	got, raised := res.Uncaught()
	switch {
	case want.Exception == nil && raised:
		failures = append(failures, fmt.Sprintf("exception: expected none, got %s", runtime.Show(got)))
	case want.Exception != nil && !raised:
		failures = append(failures, fmt.Sprintf("exception: expected %s, got none", runtime.Show(want.Exception)))
	case want.Exception != nil && !runtime.Equal(want.Exception, got):
		failures = append(failures, fmt.Sprintf("exception: expected %s, got %s", runtime.Show(want.Exception), runtime.Show(got)))
	}

	if want.Store != nil && !want.Store.Equal(res.Store) {
		failures = append(failures, fmt.Sprintf("store: expected %s, got %s", want.Store, res.Store))
	}
	if want.CheckLog {
		lines := res.Lines
		if lines == nil {
			lines = []string{}
		}
		if !reflect.DeepEqual(want.Log, lines) {
			failures = append(failures, fmt.Sprintf("log: expected %q, got %q", want.Log, lines))
		}
	}
	return failures
}
