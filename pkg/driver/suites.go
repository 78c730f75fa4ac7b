package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// HomeEnv overrides the directory where fetched suites are cached.
const HomeEnv = "WHILEPLUS_HOME"

// DefaultCacheDir returns $WHILEPLUS_HOME, falling back to ~/.whileplus.
func DefaultCacheDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return filepath.Abs(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("suite: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".whileplus"), nil
}

// SuiteFetcher clones git-hosted fixture suites into a local cache.
type SuiteFetcher struct {
	cacheDir string
	logger   *slog.Logger
}

// NewSuiteFetcher returns a fetcher rooted at cacheDir. A nil logger discards.
func NewSuiteFetcher(cacheDir string, logger *slog.Logger) *SuiteFetcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SuiteFetcher{cacheDir: cacheDir, logger: logger}
}

// Fetch checks out the pinned revision of a git suite and returns its lock
// entry together with the directory holding its fixtures.
func (f *SuiteFetcher) Fetch(name string, spec *SuiteSpec) (*LockedSuite, string, error) {
	if f == nil || f.cacheDir == "" {
		return nil, "", errors.New("suite: fetcher unavailable")
	}
	if !spec.IsGit() {
		return nil, "", fmt.Errorf("suite %q: git URL required", name)
	}
	url := spec.Git

	baseDir := f.suiteBase(name)
	version, commit, err := ensureGitCheckout(baseDir, url, spec)
	if err != nil {
		return nil, "", fmt.Errorf("suite %q: %w", name, err)
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", fmt.Errorf("suite %q: checksum %s: %w", name, checkoutDir, err)
	}
	f.logger.Info("suite fetched", "suite", name, "version", version, "commit", commit)

	return &LockedSuite{
		Name:     name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
	}, filepath.Join(checkoutDir, filepath.FromSlash(spec.Dir)), nil
}

// Locate returns the fixture directory for a declared suite. Path suites are
// resolved against the manifest. Git suites use the checkout pinned by lock
// when it is cached and its checksum still matches; otherwise the cached
// checkout is discarded, the suite is fetched again and lock is updated.
func (f *SuiteFetcher) Locate(m *Manifest, name string, lock *Lockfile) (string, error) {
	spec, ok := m.Suites[name]
	if !ok || spec == nil {
		return "", fmt.Errorf("suite %q is not declared in %s", name, m.Path)
	}
	if !spec.IsGit() {
		return m.Resolve(spec.Path), nil
	}
	if pinned, ok := lock.Find(name); ok && f != nil && f.cacheDir != "" {
		checkoutDir := filepath.Join(f.suiteBase(name), sanitizePathSegment(pinned.Version))
		if sum, err := dirChecksum(checkoutDir); err == nil && sum == pinned.Checksum {
			return filepath.Join(checkoutDir, filepath.FromSlash(spec.Dir)), nil
		}
		f.logger.Warn("suite cache stale, refetching", "suite", name, "version", pinned.Version)
		if err := os.RemoveAll(checkoutDir); err != nil {
			return "", fmt.Errorf("suite %q: discard %s: %w", name, checkoutDir, err)
		}
	}
	locked, dir, err := f.Fetch(name, spec)
	if err != nil {
		return "", err
	}
	if lock != nil {
		lock.Put(locked)
	}
	return dir, nil
}

func (f *SuiteFetcher) suiteBase(name string) string {
	return filepath.Join(f.cacheDir, "suites", sanitizePathSegment(name))
}

func ensureGitCheckout(baseDir, url string, spec *SuiteSpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if spec.Rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(spec.Rev))
		if commit, err := checkoutHead(existing); err == nil && commit == spec.Rev {
			return spec.Rev, commit, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

// checkoutHead returns the commit checked out in a cached suite directory.
func checkoutHead(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *SuiteSpec) (plumbing.Revision, string, error) {
	switch {
	case spec.Rev != "":
		return plumbing.Revision(spec.Rev), spec.Rev, nil
	case spec.Tag != "":
		return plumbing.Revision("refs/tags/" + spec.Tag), spec.Tag, nil
	case spec.Branch != "":
		return plumbing.Revision("refs/heads/" + spec.Branch), spec.Branch, nil
	}
	return "", "", fmt.Errorf("git suites require rev, tag, or branch")
}

// dirChecksum hashes file names and contents under path, skipping git metadata.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
