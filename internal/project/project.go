package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jensroland/git-solentry/internal/git"
)

// Paths holds all relevant locations for an exercise repository.
type Paths struct {
	Root       string // repository root
	GitDir     string // .git/ (or the worktree's git dir)
	CacheDir   string // <gitdir>/solentry/
	StoreDB    string // <gitdir>/solentry/entries.db
	LogDir     string // <gitdir>/solentry/logs/
	ConfigFile string // solentry.toml
}

// FindRoot returns the repository root, preferring SOLENTRY_PROJECT_DIR if
// set, then the git top level of the working directory.
func FindRoot() (string, error) {
	if dir := os.Getenv("SOLENTRY_PROJECT_DIR"); dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return git.TopLevel(wd)
}

// NewPaths constructs all path constants from a project root.
func NewPaths(root string) Paths {
	gitDir := resolveGitDir(root)
	cacheDir := filepath.Join(gitDir, "solentry")
	return Paths{
		Root:       root,
		GitDir:     gitDir,
		CacheDir:   cacheDir,
		StoreDB:    filepath.Join(cacheDir, "entries.db"),
		LogDir:     filepath.Join(cacheDir, "logs"),
		ConfigFile: filepath.Join(root, "solentry.toml"),
	}
}

// resolveGitDir follows the "gitdir: <path>" pointer that worktrees and
// submodules use in place of a .git directory.
func resolveGitDir(root string) string {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil || info.IsDir() {
		return dotGit
	}
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return dotGit
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "gitdir: ") {
		return dotGit
	}
	target := strings.TrimSpace(strings.TrimPrefix(line, "gitdir: "))
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	return target
}

// IsInitialized returns true if a solentry.toml exists at the root.
func IsInitialized(root string) bool {
	info, err := os.Stat(filepath.Join(root, "solentry.toml"))
	return err == nil && !info.IsDir()
}
