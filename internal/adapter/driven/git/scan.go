package git

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// skipDirs are never descended into during a scan.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
	"out":          {},
	".vscode":      {},
}

// Scanner locates repositories on a filesystem. It only looks for .git
// entries and never runs git, so both adapters share it.
type Scanner struct {
	fs     afero.Fs
	ignore []string
}

// NewScanner creates a Scanner. ignore holds doublestar patterns matched
// against a directory's base name and its slash-separated path relative to
// the scan root; matching directories are skipped.
func NewScanner(fs afero.Fs, ignore []string) *Scanner {
	valid := make([]string, 0, len(ignore))
	for _, p := range ignore {
		if !doublestar.ValidatePattern(p) {
			slog.Warn("ignoring invalid scan pattern", "pattern", p)
			continue
		}
		valid = append(valid, p)
	}
	return &Scanner{fs: fs, ignore: valid}
}

// IsRepo reports whether dir has a .git entry. Worktrees and submodules use a
// .git file, so both files and directories count.
func (s *Scanner) IsRepo(dir string) bool {
	_, err := s.fs.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// FindRepoRoot walks upward from path, inclusive, to the first repository.
func (s *Scanner) FindRepoRoot(_ context.Context, path string) string {
	current := filepath.Clean(path)
	for {
		if s.IsRepo(current) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// FindAllRepos returns repositories at or beneath root, depth-first in
// directory order. A repository's contents are not scanned, hidden
// directories are skipped, and unreadable directories are ignored.
func (s *Scanner) FindAllRepos(ctx context.Context, root string, maxDepth int) []string {
	root = filepath.Clean(root)

	var repos []string
	visited := make(map[string]struct{})

	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > maxDepth || ctx.Err() != nil {
			return
		}
		if _, ok := visited[dir]; ok {
			return
		}
		visited[dir] = struct{}{}

		if s.IsRepo(dir) {
			repos = append(repos, dir)
			return
		}

		entries, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			if !os.IsPermission(err) {
				slog.Debug("failed to scan directory", "dir", dir, "error", err)
			}
			return
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(dir, entry.Name())
			if s.skip(root, sub, entry.Name()) {
				continue
			}
			walk(sub, depth+1)
		}
	}

	walk(root, 0)
	return repos
}

func (s *Scanner) skip(root, dir, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := skipDirs[name]; ok {
		return true
	}
	if len(s.ignore) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = name
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range s.ignore {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
