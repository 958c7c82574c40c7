package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// WatchResult records what one pass of the watch cycle did to a repository.
type WatchResult string

const (
	WatchNotRepository  WatchResult = "not-a-repository"
	WatchDetachedHead   WatchResult = "detached-head"
	WatchUnbound        WatchResult = "unbound"
	WatchAutoBound      WatchResult = "auto-bound"
	WatchBindingDropped WatchResult = "binding-dropped"
	WatchApplied        WatchResult = "applied"
	WatchMismatch       WatchResult = "mismatch"
	WatchSSHReapplied   WatchResult = "ssh-reapplied"
	WatchConsistent     WatchResult = "consistent"
)

// ReconciliationEngine compares a repository's live config with its bound
// identity and decides whether to apply, auto-bind, or ask the user.
type ReconciliationEngine struct {
	vcs        driven.VersionControl
	bindings   *BindingStore
	identities *IdentityRegistry
	decisions  *DecisionQueue
}

// NewReconciliationEngine creates an engine that publishes mismatches needing
// a user decision to decisions.
func NewReconciliationEngine(
	vcs driven.VersionControl,
	bindings *BindingStore,
	identities *IdentityRegistry,
	decisions *DecisionQueue,
) *ReconciliationEngine {
	return &ReconciliationEngine{
		vcs:        vcs,
		bindings:   bindings,
		identities: identities,
		decisions:  decisions,
	}
}

// Decisions returns the queue the engine publishes to.
func (e *ReconciliationEngine) Decisions() *DecisionQueue {
	return e.decisions
}

// ExpectedSSHCommand returns the core.sshCommand an identity should produce.
func (e *ReconciliationEngine) ExpectedSSHCommand(identity model.Identity) string {
	return GenerateSSHCommand(identity.SSHKeyPath)
}

// Detect classifies the repository without changing any state.
func (e *ReconciliationEngine) Detect(ctx context.Context, repoPath string) model.RepoState {
	binding, ok := e.bindings.GetBinding(repoPath)
	if !ok {
		return model.RepoStateUnbound
	}

	identity, ok := e.identities.Get(binding.IdentityID)
	if !ok {
		return model.RepoStateIdentityMissing
	}

	cfg := e.vcs.GetConfig(ctx, repoPath)
	if cfg == nil {
		return model.RepoStateNoConfig
	}

	if cfg.Email != identity.Email || cfg.Name != identity.Name {
		return model.RepoStateMismatched
	}
	return model.RepoStateConsistent
}

// DetectMismatch reports whether a bound repository diverges from its
// identity. Email is checked before name. It never mutates state: a binding
// to a deleted identity is reported, not removed.
func (e *ReconciliationEngine) DetectMismatch(ctx context.Context, repoPath string) model.Mismatch {
	binding, ok := e.bindings.GetBinding(repoPath)
	if !ok {
		return model.Mismatch{RepoPath: repoPath}
	}

	identity, ok := e.identities.Get(binding.IdentityID)
	if !ok {
		return model.Mismatch{
			HasMismatch: true,
			RepoPath:    repoPath,
			Reason:      model.ReasonIdentityNotFound,
		}
	}

	expected := &model.ExpectedIdentity{Name: identity.Name, Email: identity.Email}

	cfg := e.vcs.GetConfig(ctx, repoPath)
	if cfg == nil {
		return model.Mismatch{
			HasMismatch: true,
			RepoPath:    repoPath,
			Expected:    expected,
			Reason:      model.ReasonNoGitConfig,
		}
	}

	switch {
	case cfg.Email != identity.Email:
		return model.Mismatch{HasMismatch: true, RepoPath: repoPath, Current: cfg, Expected: expected, Reason: model.ReasonEmailMismatch}
	case cfg.Name != identity.Name:
		return model.Mismatch{HasMismatch: true, RepoPath: repoPath, Current: cfg, Expected: expected, Reason: model.ReasonNameMismatch}
	}

	return model.Mismatch{RepoPath: repoPath}
}

// TryMatchExistingIdentity binds an unbound repository to the first identity
// whose email equals the live config's email. It reports whether a binding
// was created.
func (e *ReconciliationEngine) TryMatchExistingIdentity(ctx context.Context, repoPath string) (model.Identity, bool, error) {
	cfg := e.vcs.GetConfig(ctx, repoPath)
	if cfg == nil {
		return model.Identity{}, false, nil
	}

	identity, ok := e.identities.FindByEmail(cfg.Email)
	if !ok {
		return model.Identity{}, false, nil
	}

	if _, err := e.bindings.SetBinding(ctx, repoPath, identity.ID, false); err != nil {
		return model.Identity{}, false, fmt.Errorf("auto-bind %s: %w", repoPath, err)
	}
	return identity, true, nil
}

// Watch runs one passive reconciliation pass over a repository. Repositories
// with a detached HEAD are left alone. Stale bindings are dropped, a missing
// config or drifted SSH command is corrected silently, and an email mismatch
// is published as a Decision.
func (e *ReconciliationEngine) Watch(ctx context.Context, repoPath string) (WatchResult, error) {
	if e.vcs.FindRepoRoot(ctx, repoPath) == "" {
		return WatchNotRepository, nil
	}

	if e.vcs.IsDetachedHead(ctx, repoPath) {
		return WatchDetachedHead, nil
	}

	binding, ok := e.bindings.GetBinding(repoPath)
	if !ok {
		identity, bound, err := e.TryMatchExistingIdentity(ctx, repoPath)
		if err != nil {
			return WatchUnbound, err
		}
		if bound {
			slog.Info("auto-bound repository", "repo", repoPath, "identity", identity.Label)
			return WatchAutoBound, nil
		}
		return WatchUnbound, nil
	}

	identity, ok := e.identities.Get(binding.IdentityID)
	if !ok {
		if err := e.bindings.RemoveBinding(ctx, repoPath); err != nil {
			return WatchBindingDropped, fmt.Errorf("drop stale binding %s: %w", repoPath, err)
		}
		slog.Info("dropped binding to deleted identity", "repo", repoPath, "identity_id", binding.IdentityID)
		return WatchBindingDropped, nil
	}

	cfg := e.vcs.GetConfig(ctx, repoPath)
	if cfg == nil {
		if err := e.apply(ctx, repoPath, identity); err != nil {
			return WatchApplied, err
		}
		return WatchApplied, nil
	}

	if cfg.Email != identity.Email {
		e.decisions.Publish(model.Decision{
			RepoPath: repoPath,
			Mismatch: e.DetectMismatch(ctx, repoPath),
		})
		return WatchMismatch, nil
	}

	if cfg.SSHCommand != e.ExpectedSSHCommand(identity) {
		if err := e.apply(ctx, repoPath, identity); err != nil {
			return WatchSSHReapplied, err
		}
		slog.Debug("re-applied ssh command", "repo", repoPath, "identity", identity.Label)
		return WatchSSHReapplied, nil
	}

	return WatchConsistent, nil
}

// ApplyAndBind writes the identity to the repository's local config and
// binds the repository to it. The binding is only written after a
// successful apply.
func (e *ReconciliationEngine) ApplyAndBind(ctx context.Context, repoPath, identityID string) (model.Identity, error) {
	identity, ok := e.identities.Get(identityID)
	if !ok {
		return model.Identity{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, identityID)
	}

	if err := e.apply(ctx, repoPath, identity); err != nil {
		return model.Identity{}, err
	}

	if _, err := e.bindings.SetBinding(ctx, repoPath, identity.ID, false); err != nil {
		return model.Identity{}, err
	}
	return identity, nil
}

// Resolve carries out the user's answer to a decision and removes it from the
// queue. identityID is only used by ResolutionSwitch.
func (e *ReconciliationEngine) Resolve(ctx context.Context, d model.Decision, resolution model.Resolution, identityID string) error {
	switch resolution {
	case model.ResolutionSwitch:
		if _, err := e.ApplyAndBind(ctx, d.RepoPath, identityID); err != nil {
			return err
		}

	case model.ResolutionOverride:
		current := d.Mismatch.Current
		if current == nil {
			current = e.vcs.GetConfig(ctx, d.RepoPath)
		}
		var (
			identity model.Identity
			ok       bool
		)
		if current != nil {
			identity, ok = e.identities.FindByEmail(current.Email)
		}
		if !ok {
			e.decisions.Take(d.RepoPath)
			return fmt.Errorf("%w: %s", ErrNoMatchingIdentity, d.RepoPath)
		}
		if _, err := e.bindings.SetBinding(ctx, d.RepoPath, identity.ID, false); err != nil {
			return err
		}
	}

	e.decisions.Take(d.RepoPath)
	return nil
}

func (e *ReconciliationEngine) apply(ctx context.Context, repoPath string, identity model.Identity) error {
	return e.vcs.ApplyIdentity(ctx, repoPath, model.IdentitySettings{
		Name:       identity.Name,
		Email:      identity.Email,
		SSHCommand: e.ExpectedSSHCommand(identity),
	})
}
