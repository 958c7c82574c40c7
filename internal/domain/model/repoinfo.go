package model

// RepoInfo describes a discovered repository inside a workspace root.
// Binding and Config are snapshots taken when the info was built.
type RepoInfo struct {
	Path          string       `json:"path"`
	Name          string       `json:"name"`
	WorkspaceRoot string       `json:"workspaceRoot"`
	Binding       *RepoBinding `json:"binding,omitempty"`
	Config        *GitConfig   `json:"config,omitempty"`
}
