package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the project file looked up by FindManifest.
const ManifestName = "whileplus.yml"

// LockfileName sits next to the manifest and pins git suites.
const LockfileName = "whileplus.lock"

// Manifest represents the parsed contents of whileplus.yml.
type Manifest struct {
	Path     string
	Name     string
	Programs map[string]string
	Suites   map[string]*SuiteSpec
	Limits   Limits
}

// SuiteSpec describes where a fixture suite lives: a local directory or a
// git repository pinned by rev, tag or branch. Dir selects a subdirectory of
// the checkout.
type SuiteSpec struct {
	Path   string `yaml:"path"`
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Dir    string `yaml:"dir"`
}

// Limits bounds program execution. Zero means unlimited.
type Limits struct {
	MaxSteps int `yaml:"max_steps"`
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses whileplus.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from start looking for whileplus.yml.
func FindManifest(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Root is the directory containing the manifest.
func (m *Manifest) Root() string {
	return filepath.Dir(m.Path)
}

// Resolve interprets a manifest-relative path.
func (m *Manifest) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root(), filepath.FromSlash(rel))
}

// LockfilePath is where suites fetched for this manifest are pinned.
func (m *Manifest) LockfilePath() string {
	return filepath.Join(m.Root(), LockfileName)
}

// SuiteNames lists the declared suites in sorted order.
func (m *Manifest) SuiteNames() []string {
	names := make([]string, 0, len(m.Suites))
	for name := range m.Suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsGit reports whether the suite is fetched from a repository.
func (s *SuiteSpec) IsGit() bool {
	return s != nil && s.Git != ""
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for name, path := range m.Programs {
		if path == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("programs.%s: path must be provided", name))
		}
	}
	for _, name := range m.SuiteNames() {
		for _, issue := range m.Suites[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("suites.%s: %s", name, issue))
		}
	}
	if m.Limits.MaxSteps < 0 {
		errs.Issues = append(errs.Issues, "limits.max_steps must not be negative")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *SuiteSpec) validate() []string {
	var errs []string
	if s == nil {
		return []string{"must specify path or git"}
	}
	switch {
	case s.Path != "" && s.Git != "":
		errs = append(errs, "path suites cannot also specify git")
	case s.Path == "" && s.Git == "":
		errs = append(errs, "must specify path or git")
	}
	pins := 0
	for _, pin := range []string{s.Rev, s.Tag, s.Branch} {
		if pin != "" {
			pins++
		}
	}
	if s.Git != "" && pins == 0 {
		errs = append(errs, "git suites require rev, tag, or branch")
	}
	if pins > 1 {
		errs = append(errs, "rev, tag, and branch are mutually exclusive")
	}
	if s.Git == "" && pins > 0 {
		errs = append(errs, "rev, tag, and branch apply only to git suites")
	}
	if strings.Contains(filepath.ToSlash(s.Dir), "..") {
		errs = append(errs, fmt.Sprintf("dir %q must stay inside the checkout", s.Dir))
	}
	return errs
}

type manifestFile struct {
	Name     string            `yaml:"name"`
	Programs map[string]string `yaml:"programs"`
	Suites   suiteMap          `yaml:"suites"`
	Limits   Limits            `yaml:"limits"`
}

type suiteMap map[string]*SuiteSpec

// UnmarshalYAML accepts a bare string as shorthand for {path: ...}.
func (sm *suiteMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*sm = suiteMap{}
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: suites must be a mapping")
	}
	result := make(suiteMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: suite names must be non-empty")
		}
		spec := new(SuiteSpec)
		switch valNode.Kind {
		case yaml.ScalarNode:
			spec.Path = strings.TrimSpace(valNode.Value)
		case yaml.MappingNode:
			if err := valNode.Decode(spec); err != nil {
				return fmt.Errorf("manifest: suite %q: %w", key, err)
			}
		default:
			return fmt.Errorf("manifest: suite %q must be a path or a mapping", key)
		}
		result[key] = spec
	}
	*sm = result
	return nil
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:     path,
		Name:     strings.TrimSpace(mf.Name),
		Programs: make(map[string]string, len(mf.Programs)),
		Suites:   make(map[string]*SuiteSpec, len(mf.Suites)),
		Limits:   mf.Limits,
	}
	for name, prog := range mf.Programs {
		result.Programs[strings.TrimSpace(name)] = strings.TrimSpace(prog)
	}
	for name, spec := range mf.Suites {
		if spec == nil {
			result.Suites[name] = nil
			continue
		}
		clone := *spec
		clone.Path = strings.TrimSpace(clone.Path)
		clone.Git = strings.TrimSpace(clone.Git)
		clone.Rev = strings.TrimSpace(clone.Rev)
		clone.Tag = strings.TrimSpace(clone.Tag)
		clone.Branch = strings.TrimSpace(clone.Branch)
		clone.Dir = strings.TrimSpace(clone.Dir)
		result.Suites[name] = &clone
	}
	return result
}
