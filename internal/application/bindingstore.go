package application

import (
	"context"
	"slices"
	"sync"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// BindingStore persists repository path -> identity associations. Every path
// is normalized before use, so there is at most one binding per working copy.
type BindingStore struct {
	mu       sync.RWMutex
	blobs    driven.BlobStore
	bindings []model.RepoBinding
}

// NewBindingStore creates an empty store. Call Load before use.
func NewBindingStore(blobs driven.BlobStore) *BindingStore {
	return &BindingStore{blobs: blobs, bindings: []model.RepoBinding{}}
}

// Load replaces the in-memory bindings with the persisted list. Stored paths
// are re-normalized; a later duplicate wins.
func (s *BindingStore) Load(ctx context.Context) error {
	stored, err := loadList[model.RepoBinding](ctx, s.blobs, BindingsKey)
	if err != nil {
		return err
	}

	bindings := make([]model.RepoBinding, 0, len(stored))
	for _, b := range stored {
		b.RepoPath = NormalizePath(b.RepoPath)
		if i := indexBinding(bindings, b.RepoPath); i >= 0 {
			bindings[i] = b
			continue
		}
		bindings = append(bindings, b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = bindings
	return nil
}

// GetBinding returns the binding stored for exactly this path.
func (s *BindingStore) GetBinding(repoPath string) (model.RepoBinding, bool) {
	key := NormalizePath(repoPath)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexBinding(s.bindings, key); i >= 0 {
		return s.bindings[i], true
	}
	return model.RepoBinding{}, false
}

// SetBinding creates or overwrites the binding for repoPath.
func (s *BindingStore) SetBinding(ctx context.Context, repoPath, identityID string, enforced bool) (model.RepoBinding, error) {
	binding := model.RepoBinding{
		RepoPath:   NormalizePath(repoPath),
		IdentityID: identityID,
		Enforced:   enforced,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.bindings)
	if i := indexBinding(next, binding.RepoPath); i >= 0 {
		next[i] = binding
	} else {
		next = append(next, binding)
	}

	if err := saveList(ctx, s.blobs, BindingsKey, next); err != nil {
		return model.RepoBinding{}, err
	}
	s.bindings = next
	return binding, nil
}

// RemoveBinding deletes the binding for repoPath if one exists.
func (s *BindingStore) RemoveBinding(ctx context.Context, repoPath string) error {
	key := NormalizePath(repoPath)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexBinding(s.bindings, key)
	if i < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(s.bindings), i, i+1)
	if err := saveList(ctx, s.blobs, BindingsKey, next); err != nil {
		return err
	}
	s.bindings = next
	return nil
}

// GetAllBindings returns a copy of every binding.
func (s *BindingStore) GetAllBindings() []model.RepoBinding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.bindings)
}

// GetBindingsForIdentity returns the bindings that reference identityID.
func (s *BindingStore) GetBindingsForIdentity(identityID string) []model.RepoBinding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.RepoBinding
	for _, b := range s.bindings {
		if b.IdentityID == identityID {
			out = append(out, b)
		}
	}
	return out
}

// FindRepoPath returns the stored path that answers for p: an exact match,
// else the longest stored path that is an ancestor of p on segment
// boundaries. It returns "" when nothing matches.
func (s *BindingStore) FindRepoPath(p string) string {
	key := NormalizePath(p)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if indexBinding(s.bindings, key) >= 0 {
		return key
	}

	best := ""
	for _, b := range s.bindings {
		if IsWithin(key, b.RepoPath) && len(b.RepoPath) > len(best) {
			best = b.RepoPath
		}
	}
	return best
}

func indexBinding(bindings []model.RepoBinding, key string) int {
	return slices.IndexFunc(bindings, func(b model.RepoBinding) bool { return b.RepoPath == key })
}
