package model

// RepoBinding associates one normalized repository path with one identity.
// Enforced is reserved for a strict mode and is informational only.
type RepoBinding struct {
	RepoPath   string `json:"repoPath"`
	IdentityID string `json:"identityId"`
	Enforced   bool   `json:"enforced"`
}
