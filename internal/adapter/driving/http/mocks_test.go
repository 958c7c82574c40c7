package httphandler_test

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// --- Mock implementations ---

type memBlobStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, driven.ErrBlobNotFound
	}
	return v, nil
}

func (m *memBlobStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

type memSecretStore struct{ data map[string]string }

func (m *memSecretStore) Set(_ context.Context, k, v string) error { m.data[k] = v; return nil }
func (m *memSecretStore) Get(_ context.Context, k string) (string, error) {
	return m.data[k], nil
}
func (m *memSecretStore) Delete(_ context.Context, k string) error { delete(m.data, k); return nil }

// fakeVCS treats every key of configs as a repository root.
type fakeVCS struct {
	mu       sync.Mutex
	configs  map[string]*model.GitConfig
	applyErr error
}

func (f *fakeVCS) Available() bool { return true }

func (f *fakeVCS) FindRepoRoot(_ context.Context, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	best := ""
	for repo := range f.configs {
		if application.IsWithin(path, repo) && len(repo) > len(best) {
			best = repo
		}
	}
	return best
}

func (f *fakeVCS) FindAllRepos(_ context.Context, path string, _ int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, repo := range slices.Sorted(maps.Keys(f.configs)) {
		if repo != path && strings.HasPrefix(repo, path+"/") {
			out = append(out, repo)
		}
	}
	return out
}

func (f *fakeVCS) GetConfig(_ context.Context, repo string) *model.GitConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c := f.configs[repo]; c != nil {
		cp := *c
		return &cp
	}
	return nil
}

func (f *fakeVCS) ApplyIdentity(_ context.Context, repo string, s model.IdentitySettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	f.configs[repo] = &model.GitConfig{Name: s.Name, Email: s.Email, SSHCommand: s.SSHCommand}
	return nil
}

func (f *fakeVCS) DetectProvider(context.Context, string) model.Provider { return model.ProviderUnknown }
func (f *fakeVCS) PrimaryRemote(context.Context, string) string { return "" }
func (f *fakeVCS) IsDetachedHead(context.Context, string) bool { return false }

// --- Fixture ---

const keyPath = "/keys/id_work"

type env struct {
	vcs        *fakeVCS
	identities *application.IdentityRegistry
	bindings   *application.BindingStore
	engine     *application.ReconciliationEngine
	session    *application.Session
	status     *application.StatusService
}

func newEnv(repos ...string) *env {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, keyPath, []byte("key"), 0o600)

	blobs := &memBlobStore{data: map[string][]byte{}}
	vcs := &fakeVCS{configs: map[string]*model.GitConfig{}}
	for _, r := range repos {
		vcs.configs[r] = nil
	}

	e := &env{vcs: vcs}
	e.identities = application.NewIdentityRegistry(blobs, &memSecretStore{data: map[string]string{}}, fs)
	e.bindings = application.NewBindingStore(blobs)
	e.engine = application.NewReconciliationEngine(vcs, e.bindings, e.identities, application.NewDecisionQueue())
	e.session = application.NewSession(vcs, e.bindings, e.engine, application.NewDiscoveryCoordinator(vcs, 5))
	e.status = application.NewStatusService(vcs, e.bindings, e.identities, e.engine)
	return e
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
