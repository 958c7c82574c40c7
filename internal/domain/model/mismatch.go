package model

// Mismatch reasons, in the order they are checked.
const (
	ReasonIdentityNotFound = "Identity not found"
	ReasonNoGitConfig      = "No Git config found"
	ReasonEmailMismatch    = "Email mismatch"
	ReasonNameMismatch     = "Name mismatch"
)

// ExpectedIdentity is the name and email a bound repository should carry.
type ExpectedIdentity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Mismatch is the result of comparing a repository's live config with its
// bound identity.
type Mismatch struct {
	HasMismatch bool              `json:"hasMismatch"`
	RepoPath    string            `json:"repoPath"`
	Current     *GitConfig        `json:"currentConfig,omitempty"`
	Expected    *ExpectedIdentity `json:"expectedIdentity,omitempty"`
	Reason      string            `json:"reason,omitempty"`
}

// Promptable reports whether the mismatch carries enough information to ask
// the user about it.
func (m Mismatch) Promptable() bool {
	return m.HasMismatch && m.Current != nil && m.Expected != nil
}

// Decision is a mismatch waiting for the user to pick a Resolution.
type Decision struct {
	RepoPath string   `json:"repoPath"`
	Mismatch Mismatch `json:"mismatch"`
}
