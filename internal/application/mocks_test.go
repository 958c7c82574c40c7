package application_test

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/spf13/afero"

	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// --- Mock implementations ---

type memBlobStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	puts   int
	putErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{data: make(map[string][]byte)}
}

func (m *memBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, driven.ErrBlobNotFound
	}
	return slices.Clone(v), nil
}

func (m *memBlobStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.data[key] = slices.Clone(value)
	return nil
}

type memSecretStore struct {
	data map[string]string
}

func newMemSecretStore() *memSecretStore {
	return &memSecretStore{data: make(map[string]string)}
}

func (m *memSecretStore) Set(_ context.Context, key, plaintext string) error {
	m.data[key] = plaintext
	return nil
}

func (m *memSecretStore) Get(_ context.Context, key string) (string, error) {
	return m.data[key], nil
}

func (m *memSecretStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type applyCall struct {
	Repo     string
	Settings model.IdentitySettings
}

// fakeVCS is an in-memory version control adapter. A path is a repository when
// it is a key of configs; a nil value means the repository has no identity
// config yet.
type fakeVCS struct {
	configs  map[string]*model.GitConfig
	detached map[string]bool
	remotes  map[string]string
	applyErr error
	applied  []applyCall
}

func newFakeVCS(repos ...string) *fakeVCS {
	v := &fakeVCS{
		configs:  make(map[string]*model.GitConfig),
		detached: make(map[string]bool),
		remotes:  make(map[string]string),
	}
	for _, r := range repos {
		v.configs[r] = nil
	}
	return v
}

func (f *fakeVCS) setConfig(repo, name, email, sshCommand string) {
	f.configs[repo] = &model.GitConfig{Name: name, Email: email, SSHCommand: sshCommand}
}

func (f *fakeVCS) Available() bool { return true }

func (f *fakeVCS) FindRepoRoot(_ context.Context, path string) string {
	best := ""
	for repo := range f.configs {
		if application.IsWithin(path, repo) && len(repo) > len(best) {
			best = repo
		}
	}
	return best
}

func (f *fakeVCS) FindAllRepos(_ context.Context, path string, _ int) []string {
	var out []string
	for _, repo := range slices.Sorted(maps.Keys(f.configs)) {
		if repo != path && application.IsWithin(repo, path) {
			out = append(out, repo)
		}
	}
	return out
}

func (f *fakeVCS) GetConfig(_ context.Context, repo string) *model.GitConfig {
	cfg := f.configs[repo]
	if cfg == nil {
		return nil
	}
	c := *cfg
	return &c
}

func (f *fakeVCS) ApplyIdentity(_ context.Context, repo string, s model.IdentitySettings) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, applyCall{Repo: repo, Settings: s})
	f.configs[repo] = &model.GitConfig{Name: s.Name, Email: s.Email, SSHCommand: s.SSHCommand}
	return nil
}

func (f *fakeVCS) DetectProvider(_ context.Context, repo string) model.Provider {
	return model.ProviderFromRemotes(f.remotes[repo])
}

func (f *fakeVCS) PrimaryRemote(_ context.Context, repo string) string { return f.remotes[repo] }

func (f *fakeVCS) IsDetachedHead(_ context.Context, repo string) bool {
	return f.detached[repo]
}

type stubGitHubClient struct {
	login string
	err   error
}

func (s *stubGitHubClient) AuthenticatedLogin(_ context.Context) (string, error) {
	return s.login, s.err
}

// --- Fixtures ---

const (
	workKey     = "/keys/id_work"
	personalKey = "/keys/id_personal"
)

type fixture struct {
	blobs      *memBlobStore
	secrets    *memSecretStore
	fs         afero.Fs
	vcs        *fakeVCS
	identities *application.IdentityRegistry
	bindings   *application.BindingStore
	decisions  *application.DecisionQueue
	engine     *application.ReconciliationEngine
}

func newFixture(repos ...string) *fixture {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, workKey, []byte("key"), 0o600)
	_ = afero.WriteFile(fs, personalKey, []byte("key"), 0o600)

	f := &fixture{
		blobs:     newMemBlobStore(),
		secrets:   newMemSecretStore(),
		fs:        fs,
		vcs:       newFakeVCS(repos...),
		decisions: application.NewDecisionQueue(),
	}
	f.identities = application.NewIdentityRegistry(f.blobs, f.secrets, fs)
	f.bindings = application.NewBindingStore(f.blobs)
	f.engine = application.NewReconciliationEngine(f.vcs, f.bindings, f.identities, f.decisions)
	return f
}

func (f *fixture) addWork(ctx context.Context) (model.Identity, error) {
	return f.identities.Add(ctx, model.IdentityFields{
		Label:      "Work",
		Name:       "Jane Doe",
		Email:      "jane@corp.example",
		SSHKeyPath: workKey,
	})
}

func (f *fixture) addPersonal(ctx context.Context) (model.Identity, error) {
	return f.identities.Add(ctx, model.IdentityFields{
		Label:      "Personal",
		Name:       "Jane",
		Email:      "jane@home.example",
		SSHKeyPath: personalKey,
	})
}
