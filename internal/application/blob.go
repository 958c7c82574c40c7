package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// Blob keys and the secret key prefix used in the persistence substrate.
const (
	IdentitiesKey   = "gitswitch.identities"
	BindingsKey     = "gitswitch.repoBindings"
	SecretKeyPrefix = "gitswitch.githubToken."
)

// SecretKey returns the secret slot key for an identity's access token.
func SecretKey(identityID string) string {
	return SecretKeyPrefix + identityID
}

// loadList reads a JSON array stored under key. A missing key is an empty list.
func loadList[T any](ctx context.Context, store driven.BlobStore, key string) ([]T, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, driven.ErrBlobNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// saveList writes items as a JSON array under key, replacing the whole list.
func saveList[T any](ctx context.Context, store driven.BlobStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
