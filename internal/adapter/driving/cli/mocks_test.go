package cli

import (
	"bytes"
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/config"
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
	mu      sync.Mutex
	configs map[string]*model.GitConfig
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
		if repo != path && strings.HasPrefix(repo, path+string(filepath.Separator)) {
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
	f.configs[repo] = &model.GitConfig{Name: s.Name, Email: s.Email, SSHCommand: s.SSHCommand}
	return nil
}

func (f *fakeVCS) DetectProvider(context.Context, string) model.Provider { return model.ProviderUnknown }
func (f *fakeVCS) PrimaryRemote(context.Context, string) string { return "" }
func (f *fakeVCS) IsDetachedHead(context.Context, string) bool { return false }

type stubGitHubClient struct{ login string }

func (s stubGitHubClient) AuthenticatedLogin(context.Context) (string, error) { return s.login, nil }

// --- Fixture ---

const keyPath = "/keys/id_work"

func newTestApp(t *testing.T, repos ...string) (*App, *fakeVCS) {
	t.Helper()

	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, keyPath, []byte("key"), 0o600)

	blobs := &memBlobStore{data: map[string][]byte{}}
	vcs := &fakeVCS{configs: map[string]*model.GitConfig{}}
	for _, r := range repos {
		vcs.configs[r] = nil
	}

	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "state.db")

	a := &App{Config: cfg, VCS: vcs}
	a.Identities = application.NewIdentityRegistry(blobs, &memSecretStore{data: map[string]string{}}, fs)
	a.Bindings = application.NewBindingStore(blobs)
	a.Engine = application.NewReconciliationEngine(vcs, a.Bindings, a.Identities, application.NewDecisionQueue())
	a.Session = application.NewSession(vcs, a.Bindings, a.Engine, application.NewDiscoveryCoordinator(vcs, cfg.ScanDepth))
	a.Status = application.NewStatusService(vcs, a.Bindings, a.Identities, a.Engine)
	a.Verifier = application.NewTokenVerifier(a.Identities, func(token string) driven.GitHubClient {
		return stubGitHubClient{login: strings.TrimPrefix(token, "tok-")}
	})
	return a, vcs
}

// runCLI executes the root command against a and returns the combined output.
func runCLI(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()

	for _, key := range []string{
		"GITSWITCH_DB_PATH", "GITSWITCH_LISTEN_ADDR", "GITSWITCH_SCAN_DEPTH", "GITSWITCH_IGNORE",
		"GITSWITCH_ROOTS", "GITSWITCH_WATCH_DEBOUNCE", "GITSWITCH_LOG_LEVEL", "GITSWITCH_SECRET_KEY",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("GITSWITCH_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	prevTerminal := isTerminal
	isTerminal = func() bool { return false }
	app = a
	t.Cleanup(func() {
		app = nil
		isTerminal = prevTerminal
	})

	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func addWork(t *testing.T, a *App) model.Identity {
	t.Helper()
	id, err := a.Identities.Add(context.Background(), model.IdentityFields{
		Label: "Work", Name: "Jane Doe", Email: "jane@corp.example", SSHKeyPath: keyPath, GitHubUsername: "jdoe",
	})
	if err != nil {
		t.Fatalf("add identity: %v", err)
	}
	return id
}

// holdLock takes the file lock at path and returns its release func.
func holdLock(t *testing.T, path string) func() {
	t.Helper()
	l := flock.New(path)
	locked, err := l.TryLock()
	if err != nil || !locked {
		t.Fatalf("lock %s: locked=%v err=%v", path, locked, err)
	}
	return func() { _ = l.Unlock() }
}
