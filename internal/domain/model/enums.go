package model

// Provider identifies the hosting service behind a repository's remotes.
type Provider string

const (
	ProviderGitHub    Provider = "github"
	ProviderGitLab    Provider = "gitlab"
	ProviderBitbucket Provider = "bitbucket"
	ProviderUnknown   Provider = "unknown"
)

// RepoState is the reconciliation state of a single repository.
type RepoState string

const (
	RepoStateUnbound         RepoState = "unbound"
	RepoStateConsistent      RepoState = "bound-consistent"
	RepoStateMismatched      RepoState = "bound-mismatched"
	RepoStateIdentityMissing RepoState = "bound-identity-missing"
	RepoStateNoConfig        RepoState = "bound-no-config"
)

// Resolution is the user's answer to a surfaced mismatch.
type Resolution string

const (
	ResolutionSwitch   Resolution = "switch"   // Apply a chosen identity and rebind.
	ResolutionOverride Resolution = "override" // Accept the live config as ground truth.
	ResolutionCancel   Resolution = "cancel"
)

// LookupResolution maps user input to a Resolution. ok is false for anything
// other than the three known values.
func LookupResolution(s string) (Resolution, bool) {
	switch r := Resolution(s); r {
	case ResolutionSwitch, ResolutionOverride, ResolutionCancel:
		return r, true
	default:
		return ResolutionCancel, false
	}
}

// ParseResolution maps user input to a Resolution. Unknown input is a cancel.
func ParseResolution(s string) Resolution {
	r, _ := LookupResolution(s)
	return r
}
