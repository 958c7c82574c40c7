package model

// Identity is a named committer profile: the name and email written to a
// repository's local git config and the SSH key used for its remotes.
type Identity struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	SSHKeyPath     string `json:"sshKeyPath"`
	GitHubUsername string `json:"githubUsername,omitempty"`
}

// IdentityFields holds everything about an Identity except its ID. It is the
// input to IdentityRegistry.Add, which assigns the ID.
type IdentityFields struct {
	Label          string `json:"label"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	SSHKeyPath     string `json:"sshKeyPath"`
	GitHubUsername string `json:"githubUsername,omitempty"`
}

// IdentityUpdate is a partial Identity. A nil field is left unchanged.
type IdentityUpdate struct {
	Label          *string `json:"label,omitempty"`
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	SSHKeyPath     *string `json:"sshKeyPath,omitempty"`
	GitHubUsername *string `json:"githubUsername,omitempty"`
}

// Apply returns a copy of id with every non-nil field of u merged in.
func (u IdentityUpdate) Apply(id Identity) Identity {
	if u.Label != nil {
		id.Label = *u.Label
	}
	if u.Name != nil {
		id.Name = *u.Name
	}
	if u.Email != nil {
		id.Email = *u.Email
	}
	if u.SSHKeyPath != nil {
		id.SSHKeyPath = *u.SSHKeyPath
	}
	if u.GitHubUsername != nil {
		id.GitHubUsername = *u.GitHubUsername
	}
	return id
}

// IsEmpty reports whether the update carries no fields.
func (u IdentityUpdate) IsEmpty() bool {
	return u.Label == nil && u.Name == nil && u.Email == nil && u.SSHKeyPath == nil && u.GitHubUsername == nil
}
