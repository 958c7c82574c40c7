package application

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// RepoAnnotation is the per-repository line shown in repository listings.
type RepoAnnotation struct {
	Description string
	Tooltip     string
	Mismatch    bool
}

// StatusService builds the human-readable status of a repository.
type StatusService struct {
	vcs        driven.VersionControl
	bindings   *BindingStore
	identities *IdentityRegistry
	engine     *ReconciliationEngine
}

// NewStatusService creates a StatusService.
func NewStatusService(
	vcs driven.VersionControl,
	bindings *BindingStore,
	identities *IdentityRegistry,
	engine *ReconciliationEngine,
) *StatusService {
	return &StatusService{vcs: vcs, bindings: bindings, identities: identities, engine: engine}
}

// Describe returns the status of the repository containing path. A binding on
// an enclosing repository answers for nested paths. ok is false when path is
// not inside a repository.
func (s *StatusService) Describe(ctx context.Context, path string) (model.RepoStatus, bool) {
	repoPath := s.vcs.FindRepoRoot(ctx, NormalizePath(path))
	if repoPath == "" {
		return model.RepoStatus{}, false
	}
	if bound := s.bindings.FindRepoPath(repoPath); bound != "" {
		repoPath = bound
	}

	repoName := filepath.Base(repoPath)
	status := model.RepoStatus{
		RepoPath: repoPath,
		RepoName: repoName,
		State:    s.engine.Detect(ctx, repoPath),
		Provider: s.vcs.DetectProvider(ctx, repoPath),
	}
	if remote := s.vcs.PrimaryRemote(ctx, repoPath); remote != "" {
		status.RemoteOwner = model.OwnerFromRemote(remote)
	}

	cfg := s.vcs.GetConfig(ctx, repoPath)

	binding, ok := s.bindings.GetBinding(repoPath)
	if !ok {
		status.Level = model.StatusWarning
		if cfg != nil {
			status.Email = cfg.Email
			status.Text = fmt.Sprintf("%s: %s", repoName, cfg.Email)
		} else {
			status.Text = fmt.Sprintf("%s: No Identity", repoName)
		}
		status.Tooltip = "No identity bound to " + repoPath
		return status, true
	}

	identity, ok := s.identities.Get(binding.IdentityID)
	if !ok {
		status.Level = model.StatusError
		status.IdentityID = binding.IdentityID
		status.Text = "Identity Not Found"
		status.Tooltip = fmt.Sprintf("%s is bound to identity %s, which no longer exists", repoPath, binding.IdentityID)
		return status, true
	}

	status.IdentityID = identity.ID
	status.IdentityLabel = identity.Label
	status.Email = identity.Email
	status.Text = fmt.Sprintf("%s: %s", repoName, identity.Label)

	if cfg != nil && cfg.Email != identity.Email {
		status.Level = model.StatusWarning
		status.Tooltip = fmt.Sprintf("Mismatch detected. Expected: %s, Current: %s", identity.Email, cfg.Email)
		return status, true
	}

	status.Level = model.StatusOK
	status.Tooltip = fmt.Sprintf("%s - %s <%s>", repoName, identity.Name, identity.Email)
	return status, true
}

// Annotate describes a discovered repository for listings.
func (s *StatusService) Annotate(info model.RepoInfo) RepoAnnotation {
	if info.Binding == nil {
		a := RepoAnnotation{Description: "No identity bound", Tooltip: info.Path}
		if info.Config != nil {
			a.Tooltip += "\nCurrent config: " + info.Config.Email
		}
		return a
	}

	identity, ok := s.identities.Get(info.Binding.IdentityID)
	if !ok {
		return RepoAnnotation{Description: "Identity not found", Tooltip: info.Path, Mismatch: true}
	}

	a := RepoAnnotation{
		Description: identity.Label,
		Tooltip:     fmt.Sprintf("%s\nIdentity: %s (%s)", info.Path, identity.Label, identity.Email),
	}
	if info.Config != nil && info.Config.Email != identity.Email {
		a.Mismatch = true
		a.Description += " ⚠ Mismatch"
		a.Tooltip += fmt.Sprintf("\n⚠ Config mismatch: Expected %s, Found %s", identity.Email, info.Config.Email)
	}
	return a
}
