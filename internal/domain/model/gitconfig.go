package model

// GitConfig is a point-in-time snapshot of a repository's effective committer
// configuration. SSHCommand is only read from the local scope.
type GitConfig struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	SSHCommand string `json:"sshCommand,omitempty"`
}

// IdentitySettings is what gets written to a repository's local config.
// An empty SSHCommand unsets core.sshCommand.
type IdentitySettings struct {
	Name       string
	Email      string
	SSHCommand string
}
