// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// IdentityViewModel holds presentation-ready data for one identity row.
type IdentityViewModel struct {
	ID             string
	Label          string
	Name           string
	Email          string
	SSHKeyPath     string
	GitHubUsername string
	BindingCount   int
	DeletePath     string
}

// RepoViewModel holds presentation-ready data for one discovered repository.
type RepoViewModel struct {
	Name        string
	Path        string
	Description string
	Tooltip     string
	Mismatch    bool
}

// DecisionViewModel holds presentation-ready data for a pending mismatch.
type DecisionViewModel struct {
	RepoPath string
	Message  string
}

// IdentityFormViewModel carries the add form's values back after a failed
// submission.
type IdentityFormViewModel struct {
	Label          string
	Name           string
	Email          string
	SSHKeyPath     string
	GitHubUsername string
}

// SettingsPageViewModel is everything the settings page renders.
type SettingsPageViewModel struct {
	Identities []IdentityViewModel
	Repos      []RepoViewModel
	Decisions  []DecisionViewModel
	Form       IdentityFormViewModel
	CSRFToken  string
	Flash      string
	Error      string
	HelpHTML   string
}
