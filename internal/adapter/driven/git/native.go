package git

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/gopasspw/gitconfig"
	"github.com/spf13/afero"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VersionControl = (*Native)(nil)

// Native implements driven.VersionControl without a git executable. Config
// files are parsed and written with gitconfig; refs and remotes are read with
// go-git.
type Native struct {
	*Scanner

	// noWrites loads configs read-only. Used by tests.
	noWrites bool
}

// NewNative creates a Native adapter.
func NewNative(scanner *Scanner) *Native {
	return &Native{Scanner: scanner}
}

// Available is always true: nothing external is required.
func (n *Native) Available() bool { return true }

// gitDirs resolves the repository's git directory and the common directory
// holding the shared config. In a linked worktree or a submodule .git is a
// file pointing elsewhere; in a linked worktree the gitdir also names its
// commondir.
func (n *Native) gitDirs(repoPath string) (gitDir, commonDir string) {
	gitDir = filepath.Join(repoPath, ".git")
	if info, err := n.fs.Stat(gitDir); err == nil && !info.IsDir() {
		if target, ok := readPointer(n.fs, gitDir, "gitdir:"); ok {
			gitDir = resolveFrom(repoPath, target)
		}
	}

	commonDir = gitDir
	if target, ok := readPointer(n.fs, filepath.Join(gitDir, "commondir"), ""); ok {
		commonDir = resolveFrom(gitDir, target)
	}
	return gitDir, commonDir
}

// readPointer reads a one-line file such as .git or commondir and returns its
// value with prefix stripped.
func readPointer(fs afero.Fs, path, prefix string) (string, bool) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", false
	}
	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	if prefix != "" {
		var found bool
		if line, found = strings.CutPrefix(line, prefix); !found {
			return "", false
		}
		line = strings.TrimSpace(line)
	}
	return line, line != ""
}

func resolveFrom(base, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(base, target)
}

func (n *Native) configs(repoPath string) *gitconfig.Configs {
	gitDir, commonDir := n.gitDirs(repoPath)

	cs := gitconfig.New()
	cs.LocalConfig = "config"
	cs.WorktreeConfig = filepath.Join(gitDir, "config.worktree")
	if rel, err := filepath.Rel(commonDir, cs.WorktreeConfig); err == nil {
		cs.WorktreeConfig = rel
	}
	cs.NoWrites = n.noWrites
	return cs.LoadAll(commonDir)
}

func effective(cs *gitconfig.Configs, key string) string {
	if v := cs.GetLocal(key); v != "" {
		return v
	}
	return cs.GetGlobal(key)
}

// GetConfig returns the effective identity, or nil if name or email is unset.
func (n *Native) GetConfig(_ context.Context, repoPath string) *model.GitConfig {
	cs := n.configs(repoPath)

	name := effective(cs, "user.name")
	email := effective(cs, "user.email")
	if name == "" || email == "" {
		return nil
	}
	return &model.GitConfig{Name: name, Email: email, SSHCommand: cs.GetLocal("core.sshCommand")}
}

// ApplyIdentity writes the identity to the repository's local config. An empty SSHCommand unsets
// core.sshCommand.
func (n *Native) ApplyIdentity(_ context.Context, repoPath string, s model.IdentitySettings) error {
	cs := n.configs(repoPath)

	if err := cs.SetLocal("user.name", s.Name); err != nil {
		return &ApplyError{Key: "user.name", Err: err}
	}
	if err := cs.SetLocal("user.email", s.Email); err != nil {
		return &ApplyError{Key: "user.email", Err: err}
	}

	if s.SSHCommand == "" {
		if err := cs.UnsetLocal("core.sshCommand"); err != nil {
			return &ApplyError{Key: "core.sshCommand", Err: err}
		}
		return nil
	}
	if err := cs.SetLocal("core.sshCommand", s.SSHCommand); err != nil {
		return &ApplyError{Key: "core.sshCommand", Err: err}
	}
	return nil
}

func (n *Native) open(repoPath string) (*gogit.Repository, error) {
	return gogit.PlainOpenWithOptions(repoPath, &gogit.PlainOpenOptions{EnableDotGitCommonDir: true})
}

// DetectProvider classifies the repository by its remotes.
func (n *Native) DetectProvider(_ context.Context, repoPath string) model.Provider {
	repo, err := n.open(repoPath)
	if err != nil {
		return model.ProviderUnknown
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return model.ProviderUnknown
	}

	var urls []string
	for _, r := range remotes {
		urls = append(urls, r.Config().URLs...)
	}
	return model.ProviderFromRemotes(urls...)
}

// PrimaryRemote returns the first origin URL, or "".
func (n *Native) PrimaryRemote(_ context.Context, repoPath string) string {
	repo, err := n.open(repoPath)
	if err != nil {
		return ""
	}
	remote, err := repo.Remote(gogit.DefaultRemoteName)
	if err != nil {
		return ""
	}
	if urls := remote.Config().URLs; len(urls) > 0 {
		return urls[0]
	}
	return ""
}

// IsDetachedHead reports whether HEAD points at a commit instead of a branch.
// An unreadable HEAD counts as detached.
func (n *Native) IsDetachedHead(_ context.Context, repoPath string) bool {
	repo, err := n.open(repoPath)
	if err != nil {
		return true
	}
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return !errors.Is(err, plumbing.ErrReferenceNotFound)
	}
	return head.Type() != plumbing.SymbolicReference
}
