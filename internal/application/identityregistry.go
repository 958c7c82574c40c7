package application

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IdentityRegistry is the CRUD store for identities. It keeps an in-memory
// index materialized from the blob store by Load and writes the full list back
// after every mutation.
type IdentityRegistry struct {
	mu         sync.RWMutex
	blobs      driven.BlobStore
	secrets    driven.SecretStore
	fs         afero.Fs
	newID      func() string
	identities []model.Identity
}

// NewIdentityRegistry creates an empty registry. Call Load before use.
// fs is used to check that SSH key files exist.
func NewIdentityRegistry(blobs driven.BlobStore, secrets driven.SecretStore, fs afero.Fs) *IdentityRegistry {
	return &IdentityRegistry{
		blobs:      blobs,
		secrets:    secrets,
		fs:         fs,
		newID:      uuid.NewString,
		identities: []model.Identity{},
	}
}

// Load replaces the in-memory index with the persisted identity list.
func (r *IdentityRegistry) Load(ctx context.Context) error {
	identities, err := loadList[model.Identity](ctx, r.blobs, IdentitiesKey)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.identities = identities
	return nil
}

// GetAll returns a copy of every identity in insertion order.
func (r *IdentityRegistry) GetAll() []model.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.identities)
}

// Get returns the identity with the given id.
func (r *IdentityRegistry) Get(id string) (model.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexLocked(id); i >= 0 {
		return r.identities[i], true
	}
	return model.Identity{}, false
}

// FindByEmail returns the first identity whose email equals email exactly.
func (r *IdentityRegistry) FindByEmail(email string) (model.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.identities {
		if id.Email == email {
			return id, true
		}
	}
	return model.Identity{}, false
}

// Lookup resolves a user-supplied reference: an exact id first, then a
// case-insensitive label. A label shared by several identities is ambiguous.
func (r *IdentityRegistry) Lookup(ref string) (model.Identity, error) {
	if id, ok := r.Get(ref); ok {
		return id, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []model.Identity
	for _, id := range r.identities {
		if strings.EqualFold(id.Label, ref) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return model.Identity{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Identity{}, fmt.Errorf("%w: %q matches %d identities, use the id", ErrAmbiguousIdentity, ref, len(matches))
	}
}

// Add validates fields, assigns a new id and persists the identity.
func (r *IdentityRegistry) Add(ctx context.Context, fields model.IdentityFields) (model.Identity, error) {
	if err := validateEmail(fields.Email); err != nil {
		return model.Identity{}, err
	}
	if err := r.validateSSHKeyPath(fields.SSHKeyPath); err != nil {
		return model.Identity{}, err
	}

	identity := model.Identity{
		ID:             r.newID(),
		Label:          fields.Label,
		Name:           fields.Name,
		Email:          fields.Email,
		SSHKeyPath:     fields.SSHKeyPath,
		GitHubUsername: fields.GitHubUsername,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(slices.Clone(r.identities), identity)
	if err := saveList(ctx, r.blobs, IdentitiesKey, next); err != nil {
		return model.Identity{}, err
	}
	r.identities = next
	return identity, nil
}

// Update merges the present fields of upd into the identity, re-validating
// only those fields.
func (r *IdentityRegistry) Update(ctx context.Context, id string, upd model.IdentityUpdate) (model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return model.Identity{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}

	if upd.Email != nil {
		if err := validateEmail(*upd.Email); err != nil {
			return model.Identity{}, err
		}
	}
	if upd.SSHKeyPath != nil {
		if err := r.validateSSHKeyPath(*upd.SSHKeyPath); err != nil {
			return model.Identity{}, err
		}
	}

	updated := upd.Apply(r.identities[i])

	next := slices.Clone(r.identities)
	next[i] = updated
	if err := saveList(ctx, r.blobs, IdentitiesKey, next); err != nil {
		return model.Identity{}, err
	}
	r.identities = next
	return updated, nil
}

// Delete removes the identity and its secret token. Bindings that reference
// the identity are left in place and dropped lazily by the watch cycle.
func (r *IdentityRegistry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}

	if err := r.secrets.Delete(ctx, SecretKey(id)); err != nil {
		return fmt.Errorf("delete token for identity %s: %w", id, err)
	}

	next := slices.Delete(slices.Clone(r.identities), i, i+1)
	if err := saveList(ctx, r.blobs, IdentitiesKey, next); err != nil {
		return err
	}
	r.identities = next
	return nil
}

// SetSecretToken stores an access token for the identity.
func (r *IdentityRegistry) SetSecretToken(ctx context.Context, id, token string) error {
	if _, ok := r.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}
	if err := r.secrets.Set(ctx, SecretKey(id), token); err != nil {
		return fmt.Errorf("store token for identity %s: %w", id, err)
	}
	return nil
}

// GetSecretToken returns the identity's access token, or "" if none is stored.
func (r *IdentityRegistry) GetSecretToken(ctx context.Context, id string) (string, error) {
	token, err := r.secrets.Get(ctx, SecretKey(id))
	if err != nil {
		return "", fmt.Errorf("load token for identity %s: %w", id, err)
	}
	return token, nil
}

func (r *IdentityRegistry) indexLocked(id string) int {
	return slices.IndexFunc(r.identities, func(i model.Identity) bool { return i.ID == id })
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return newValidationError("email", "Invalid email format")
	}
	return nil
}

// validateSSHKeyPath rejects empty paths, pasted key material, and paths that
// do not resolve to a regular file. The file is only checked here, not on use.
func (r *IdentityRegistry) validateSSHKeyPath(keyPath string) error {
	if strings.TrimSpace(keyPath) == "" {
		return newValidationError("sshKeyPath", "SSH key path is required")
	}

	if strings.Contains(keyPath, "BEGIN") || strings.Contains(keyPath, "PRIVATE KEY") {
		return newValidationError("sshKeyPath", "Please provide the SSH key file path (e.g., ~/.ssh/id_ed25519), not the key content")
	}

	info, err := r.fs.Stat(ExpandHome(keyPath))
	if err != nil || !info.Mode().IsRegular() {
		return newValidationError("sshKeyPath", "SSH key not found: %s. Please check the path is correct.", keyPath)
	}
	return nil
}
