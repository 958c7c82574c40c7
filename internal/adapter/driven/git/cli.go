package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VersionControl = (*CLI)(nil)

// exitKeyNotFound is what `git config --unset` exits with when the key is
// already absent.
const exitKeyNotFound = 5

// ApplyError reports which config key failed to write. It matches
// driven.ErrApply with errors.Is.
type ApplyError struct {
	Key string
	Err error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s: set %s: %v", driven.ErrApply, e.Key, e.Err)
}

func (e *ApplyError) Unwrap() []error {
	return []error{driven.ErrApply, e.Err}
}

// CLI implements driven.VersionControl by running the git executable.
type CLI struct {
	*Scanner
	bin string
}

// NewCLI creates a CLI adapter. bin is the git executable; "" means "git" on
// PATH.
func NewCLI(scanner *Scanner, bin string) *CLI {
	if bin == "" {
		bin = "git"
	}
	return &CLI{Scanner: scanner, bin: bin}
}

// Available reports whether the git executable can be run.
func (c *CLI) Available() bool {
	path, err := exec.LookPath(c.bin)
	if err != nil {
		return false
	}
	return exec.Command(path, "--version").Run() == nil
}

// run executes git in dir and returns trimmed stdout.
func (c *CLI) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// configValue reads key from the local scope, falling back to global.
func (c *CLI) configValue(ctx context.Context, repoPath, key string) string {
	if v, err := c.run(ctx, repoPath, "config", "--local", key); err == nil && v != "" {
		return v
	}
	v, _ := c.run(ctx, repoPath, "config", "--global", key)
	return v
}

// GetConfig returns the effective identity, or nil if name or email is unset.
func (c *CLI) GetConfig(ctx context.Context, repoPath string) *model.GitConfig {
	name := c.configValue(ctx, repoPath, "user.name")
	if name == "" {
		return nil
	}
	email := c.configValue(ctx, repoPath, "user.email")
	if email == "" {
		return nil
	}

	ssh, _ := c.run(ctx, repoPath, "config", "--local", "core.sshCommand")
	return &model.GitConfig{Name: name, Email: email, SSHCommand: ssh}
}

// ApplyIdentity writes user.name, user.email and core.sshCommand to the local
// scope in that order. An empty SSHCommand unsets the key.
func (c *CLI) ApplyIdentity(ctx context.Context, repoPath string, s model.IdentitySettings) error {
	if _, err := c.run(ctx, repoPath, "config", "--local", "user.name", s.Name); err != nil {
		return &ApplyError{Key: "user.name", Err: err}
	}
	if _, err := c.run(ctx, repoPath, "config", "--local", "user.email", s.Email); err != nil {
		return &ApplyError{Key: "user.email", Err: err}
	}

	if s.SSHCommand != "" {
		if _, err := c.run(ctx, repoPath, "config", "--local", "core.sshCommand", s.SSHCommand); err != nil {
			return &ApplyError{Key: "core.sshCommand", Err: err}
		}
		return nil
	}

	if _, err := c.run(ctx, repoPath, "config", "--local", "--unset", "core.sshCommand"); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == exitKeyNotFound {
			return nil
		}
		return &ApplyError{Key: "core.sshCommand", Err: err}
	}
	return nil
}

// DetectProvider classifies the repository by its remotes.
func (c *CLI) DetectProvider(ctx context.Context, repoPath string) model.Provider {
	remotes, err := c.run(ctx, repoPath, "remote", "-v")
	if err != nil {
		return model.ProviderUnknown
	}
	return model.ProviderFromRemotes(remotes)
}

// PrimaryRemote returns the origin URL, or "".
func (c *CLI) PrimaryRemote(ctx context.Context, repoPath string) string {
	url, _ := c.run(ctx, repoPath, "remote", "get-url", "origin")
	return url
}

// IsDetachedHead reports whether HEAD points at a commit instead of a branch.
func (c *CLI) IsDetachedHead(ctx context.Context, repoPath string) bool {
	_, err := c.run(ctx, repoPath, "symbolic-ref", "--quiet", "--short", "HEAD")
	return err != nil
}
