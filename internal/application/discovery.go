package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// RepoHandler receives each repository found by a scan together with the
// workspace root it was found under.
type RepoHandler func(ctx context.Context, repoPath, root string) error

// DiscoveryCoordinator walks workspace roots and emits every repository it
// finds, the root itself included, exactly once per scan.
type DiscoveryCoordinator struct {
	vcs      driven.VersionControl
	maxDepth int
}

// NewDiscoveryCoordinator creates a coordinator. A maxDepth of zero uses
// driven.DefaultScanDepth.
func NewDiscoveryCoordinator(vcs driven.VersionControl, maxDepth int) *DiscoveryCoordinator {
	if maxDepth <= 0 {
		maxDepth = driven.DefaultScanDepth
	}
	return &DiscoveryCoordinator{vcs: vcs, maxDepth: maxDepth}
}

// Discover returns the repositories under root: root first when it is a
// repository itself, then nested repositories in scan order.
func (d *DiscoveryCoordinator) Discover(ctx context.Context, root string) []string {
	root = NormalizePath(root)

	var repos []string
	rootIsRepo := d.vcs.FindRepoRoot(ctx, root) == root
	if rootIsRepo {
		repos = append(repos, root)
	}

	for _, repo := range d.vcs.FindAllRepos(ctx, root, d.maxDepth) {
		repo = NormalizePath(repo)
		if rootIsRepo && repo == root {
			continue
		}
		repos = append(repos, repo)
	}
	return repos
}

// Scan discovers repositories under each root in order and hands each one to
// handle. Handler errors are logged and never stop the scan. A repository
// reachable from two roots is only handled under the first.
func (d *DiscoveryCoordinator) Scan(ctx context.Context, roots []string, handle RepoHandler) {
	seen := make(map[string]struct{})

	for _, root := range roots {
		if ctx.Err() != nil {
			return
		}

		for _, repo := range d.Discover(ctx, root) {
			if _, dup := seen[repo]; dup {
				continue
			}
			seen[repo] = struct{}{}

			if err := handle(ctx, repo, NormalizePath(root)); err != nil {
				slog.Warn("failed to process repository", "repo", repo, "root", root, "error", err)
			}
		}
	}
}
