package application

import (
	"context"
	"path/filepath"
	"slices"
	"sync"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// ScanResult is the outcome of the watch cycle for one discovered repository.
type ScanResult struct {
	RepoPath string
	Root     string
	Result   WatchResult
	Err      error
}

// Session owns the state of one host lifecycle: the workspace roots and the
// per-root cache of discovered repositories. Roots are only ever added.
type Session struct {
	vcs       driven.VersionControl
	bindings  *BindingStore
	engine    *ReconciliationEngine
	discovery *DiscoveryCoordinator

	mu    sync.Mutex
	roots []string
	cache map[string][]model.RepoInfo
}

// NewSession creates a session with no workspace roots.
func NewSession(
	vcs driven.VersionControl,
	bindings *BindingStore,
	engine *ReconciliationEngine,
	discovery *DiscoveryCoordinator,
) *Session {
	return &Session{
		vcs:       vcs,
		bindings:  bindings,
		engine:    engine,
		discovery: discovery,
		cache:     make(map[string][]model.RepoInfo),
	}
}

// AddRoots registers workspace roots and returns the ones that were new.
func (s *Session) AddRoots(roots ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []string
	for _, root := range roots {
		root = NormalizePath(root)
		if slices.Contains(s.roots, root) {
			continue
		}
		s.roots = append(s.roots, root)
		added = append(added, root)
	}
	return added
}

// Roots returns the registered workspace roots in the order they were added.
func (s *Session) Roots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.roots)
}

// ScanRoots runs the watch cycle over every repository under roots and
// invalidates their cached repository lists.
func (s *Session) ScanRoots(ctx context.Context, roots []string) []ScanResult {
	var results []ScanResult
	s.discovery.Scan(ctx, roots, func(ctx context.Context, repoPath, root string) error {
		res, err := s.engine.Watch(ctx, repoPath)
		results = append(results, ScanResult{RepoPath: repoPath, Root: root, Result: res, Err: err})
		return err
	})

	for _, root := range roots {
		s.ClearCache(root)
	}
	return results
}

// ScanAll runs ScanRoots over every registered root.
func (s *Session) ScanAll(ctx context.Context) []ScanResult {
	return s.ScanRoots(ctx, s.Roots())
}

// ReposForRoot returns the repositories under root, scanning on a cache miss.
func (s *Session) ReposForRoot(ctx context.Context, root string) []model.RepoInfo {
	root = NormalizePath(root)

	s.mu.Lock()
	cached, ok := s.cache[root]
	s.mu.Unlock()
	if ok {
		return cached
	}

	paths := s.discovery.Discover(ctx, root)
	repos := make([]model.RepoInfo, 0, len(paths))
	for _, p := range paths {
		repos = append(repos, s.repoInfo(ctx, p, root))
	}

	s.mu.Lock()
	s.cache[root] = repos
	s.mu.Unlock()
	return repos
}

// AllRepos returns the repositories of every registered root.
func (s *Session) AllRepos(ctx context.Context) []model.RepoInfo {
	var all []model.RepoInfo
	for _, root := range s.Roots() {
		all = append(all, s.ReposForRoot(ctx, root)...)
	}
	return all
}

// FindRepoForFile returns the most specific known repository containing path.
func (s *Session) FindRepoForFile(ctx context.Context, path string) (model.RepoInfo, bool) {
	path = NormalizePath(path)

	var (
		best  model.RepoInfo
		found bool
	)
	for _, repo := range s.AllRepos(ctx) {
		if IsWithin(path, repo.Path) && len(repo.Path) > len(best.Path) {
			best, found = repo, true
		}
	}
	return best, found
}

// RefreshRepo rebuilds the cached info for one repository, if it is cached.
func (s *Session) RefreshRepo(ctx context.Context, repoPath string) {
	repoPath = NormalizePath(repoPath)

	s.mu.Lock()
	defer s.mu.Unlock()

	for root, repos := range s.cache {
		for i, repo := range repos {
			if repo.Path == repoPath {
				repos[i] = s.repoInfo(ctx, repoPath, root)
				return
			}
		}
	}
}

// ClearCache drops the cached repositories for root, or for every root when
// root is empty.
func (s *Session) ClearCache(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if root == "" {
		clear(s.cache)
		return
	}
	delete(s.cache, NormalizePath(root))
}

func (s *Session) repoInfo(ctx context.Context, repoPath, root string) model.RepoInfo {
	info := model.RepoInfo{
		Path:          repoPath,
		Name:          filepath.Base(repoPath),
		WorkspaceRoot: root,
		Config:        s.vcs.GetConfig(ctx, repoPath),
	}
	if b, ok := s.bindings.GetBinding(repoPath); ok {
		info.Binding = &b
	}
	return info
}
