package driven

import "context"

// GitHubClient defines the driven port for the GitHub calls gitswitch makes
// on behalf of an identity.
type GitHubClient interface {
	// AuthenticatedLogin returns the login of the account owning the token
	// the client was built with.
	AuthenticatedLogin(ctx context.Context) (string, error)
}

// GitHubClientFactory builds a GitHubClient for a personal access token.
type GitHubClientFactory func(token string) GitHubClient
