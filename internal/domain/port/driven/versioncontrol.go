package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
)

// ErrApply is matched (via errors.Is) by every error returned from
// VersionControl.ApplyIdentity.
var ErrApply = errors.New("failed to apply git identity")

// DefaultScanDepth bounds FindAllRepos when the caller passes zero.
const DefaultScanDepth = 5

// VersionControl defines the driven port for reading and writing per-repository
// committer configuration. Read operations report absence instead of errors:
// a failing external tool means "no value".
type VersionControl interface {
	// Available reports whether the adapter can reach its backing tool.
	Available() bool

	// FindRepoRoot walks upward from path (inclusive) and returns the first
	// directory containing a .git entry, or "" if none.
	FindRepoRoot(ctx context.Context, path string) string

	// FindAllRepos returns every repository root at or beneath path, not
	// descending into repositories and bounded by maxDepth.
	FindAllRepos(ctx context.Context, path string, maxDepth int) []string

	// GetConfig returns the effective user.name/user.email (local, then
	// global) and the local core.sshCommand, or nil if name or email is unset.
	GetConfig(ctx context.Context, repoPath string) *model.GitConfig

	// ApplyIdentity writes the identity to the local scope. Partial writes
	// are not rolled back on failure.
	ApplyIdentity(ctx context.Context, repoPath string, settings model.IdentitySettings) error

	// DetectProvider classifies the repository's remotes.
	DetectProvider(ctx context.Context, repoPath string) model.Provider

	// PrimaryRemote returns the origin URL, or "".
	PrimaryRemote(ctx context.Context, repoPath string) string

	// IsDetachedHead reports whether HEAD is detached or unreadable.
	IsDetachedHead(ctx context.Context, repoPath string) bool
}
