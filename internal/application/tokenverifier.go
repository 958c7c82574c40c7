package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

var (
	// ErrNoToken indicates the identity has no stored access token.
	ErrNoToken = errors.New("no access token stored for identity")

	// ErrNoGitHubUsername indicates the identity has no GitHub username to check against.
	ErrNoGitHubUsername = errors.New("identity has no GitHub username")
)

// TokenMismatchError reports a token that authenticates as a different account.
type TokenMismatchError struct {
	Expected string
	Actual   string
}

func (e *TokenMismatchError) Error() string {
	return fmt.Sprintf("token belongs to %q, identity expects %q", e.Actual, e.Expected)
}

// TokenVerifier checks that an identity's stored token belongs to the GitHub
// account named on the identity.
type TokenVerifier struct {
	identities *IdentityRegistry
	newClient  driven.GitHubClientFactory
}

// NewTokenVerifier creates a TokenVerifier that builds a client per token.
func NewTokenVerifier(identities *IdentityRegistry, newClient driven.GitHubClientFactory) *TokenVerifier {
	return &TokenVerifier{identities: identities, newClient: newClient}
}

// Verify returns the login the identity's token authenticates as.
func (v *TokenVerifier) Verify(ctx context.Context, identityID string) (string, error) {
	identity, ok := v.identities.Get(identityID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrIdentityNotFound, identityID)
	}
	if identity.GitHubUsername == "" {
		return "", fmt.Errorf("%w: %s", ErrNoGitHubUsername, identity.Label)
	}

	token, err := v.identities.GetSecretToken(ctx, identityID)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("%w: %s", ErrNoToken, identity.Label)
	}

	login, err := v.newClient(token).AuthenticatedLogin(ctx)
	if err != nil {
		return "", fmt.Errorf("verify token for %s: %w", identity.Label, err)
	}

	if !strings.EqualFold(login, identity.GitHubUsername) {
		return login, &TokenMismatchError{Expected: identity.GitHubUsername, Actual: login}
	}
	return login, nil
}
