package git

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkRepo(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Join(dir, ".git"), 0o755))
}

func TestScanner_FindRepoRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkRepo(t, fs, "/ws/app")
	mkRepo(t, fs, "/ws/app/vendor/lib")
	require.NoError(t, fs.MkdirAll("/ws/app/src/pkg", 0o755))
	// A worktree has a .git file instead of a directory.
	require.NoError(t, afero.WriteFile(fs, "/ws/wt/.git", []byte("gitdir: /ws/app/.git/worktrees/wt"), 0o644))

	s := NewScanner(fs, nil)
	ctx := context.Background()

	assert.Equal(t, "/ws/app", s.FindRepoRoot(ctx, "/ws/app/src/pkg"))
	assert.Equal(t, "/ws/app", s.FindRepoRoot(ctx, "/ws/app"))
	assert.Equal(t, "/ws/app/vendor/lib", s.FindRepoRoot(ctx, "/ws/app/vendor/lib/x"))
	assert.Equal(t, "/ws/wt", s.FindRepoRoot(ctx, "/ws/wt/src"))
	assert.Empty(t, s.FindRepoRoot(ctx, "/ws/other"))
}

func TestScanner_FindAllRepos(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkRepo(t, fs, "/ws/a")
	mkRepo(t, fs, "/ws/a/nested") // inside a repository, not scanned
	mkRepo(t, fs, "/ws/group/b")
	mkRepo(t, fs, "/ws/node_modules/pkg")
	mkRepo(t, fs, "/ws/.hidden/c")
	mkRepo(t, fs, "/ws/build/d")
	require.NoError(t, afero.WriteFile(fs, "/ws/file.txt", []byte("x"), 0o644))

	s := NewScanner(fs, nil)
	got := s.FindAllRepos(context.Background(), "/ws", 5)

	assert.Equal(t, []string{"/ws/a", "/ws/group/b"}, got)
}

func TestScanner_FindAllReposRootIsRepo(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkRepo(t, fs, "/ws")
	mkRepo(t, fs, "/ws/sub")

	s := NewScanner(fs, nil)
	assert.Equal(t, []string{"/ws"}, s.FindAllRepos(context.Background(), "/ws", 5))
}

func TestScanner_FindAllReposRespectsDepth(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkRepo(t, fs, "/ws/one")
	mkRepo(t, fs, "/ws/x/two")
	mkRepo(t, fs, "/ws/x/y/z/four")

	s := NewScanner(fs, nil)
	ctx := context.Background()

	assert.Equal(t, []string{"/ws/one"}, s.FindAllRepos(ctx, "/ws", 1))
	assert.Equal(t, []string{"/ws/one", "/ws/x/two"}, s.FindAllRepos(ctx, "/ws", 2))
	assert.Len(t, s.FindAllRepos(ctx, "/ws", 4), 3)
}

func TestScanner_IgnorePatterns(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkRepo(t, fs, "/ws/keep")
	mkRepo(t, fs, "/ws/archive/old")
	mkRepo(t, fs, "/ws/team/tmp-scratch")
	mkRepo(t, fs, "/ws/team/real")

	s := NewScanner(fs, []string{"archive", "**/tmp-*", "[invalid"})
	got := s.FindAllRepos(context.Background(), "/ws", 5)

	assert.Equal(t, []string{"/ws/keep", "/ws/team/real"}, got)
}

func TestScanner_MissingRoot(t *testing.T) {
	s := NewScanner(afero.NewMemMapFs(), nil)
	assert.Empty(t, s.FindAllRepos(context.Background(), "/nope", 5))
}
