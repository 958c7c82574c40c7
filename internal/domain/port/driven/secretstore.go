package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by SecretStore operations that need to
// encrypt or decrypt when GITSWITCH_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set GITSWITCH_SECRET_KEY")

// SecretStore defines the driven port for per-identity secret slots.
// The adapter is responsible for encryption; values cross this boundary as plaintext.
type SecretStore interface {
	// Set stores or replaces the secret under key.
	Set(ctx context.Context, key, plaintext string) error

	// Get returns the secret under key, or ("", nil) when none is stored.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes the secret under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
