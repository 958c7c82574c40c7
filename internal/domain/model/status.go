package model

// StatusLevel grades a RepoStatus for display.
type StatusLevel string

const (
	StatusOK      StatusLevel = "ok"
	StatusWarning StatusLevel = "warning"
	StatusError   StatusLevel = "error"
)

// RepoStatus is the one-line summary shown for the repository the user is in.
type RepoStatus struct {
	RepoPath      string      `json:"repoPath"`
	RepoName      string      `json:"repoName"`
	State         RepoState   `json:"state"`
	IdentityID    string      `json:"identityId,omitempty"`
	IdentityLabel string      `json:"identityLabel,omitempty"`
	Email         string      `json:"email,omitempty"`
	Provider      Provider    `json:"provider"`
	RemoteOwner   string      `json:"remoteOwner,omitempty"`
	Text          string      `json:"text"`
	Tooltip       string      `json:"tooltip"`
	Level         StatusLevel `json:"level"`
}
