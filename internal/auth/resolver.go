package auth

import (
	"context"
	"fmt"
	"strings"
)

// CredentialDomain is the domain used to derive the synthetic credential
// identifier (email) from a user's login.
const CredentialDomain = "fittrack.app"

type loginStore interface {
	LoginExists(ctx context.Context, login string) (bool, error)
}

// CredentialResolver maps a login (username) to the credential identifier
// known by the identity provider. Keeps the synthetic-email scheme out of
// the rest of the code base.
type CredentialResolver struct {
	store loginStore
}

func NewCredentialResolver(store loginStore) *CredentialResolver {
	return &CredentialResolver{
		store: store,
	}
}

// SyntheticEmail derives the credential identifier for a login without
// checking for existence. Used when creating new accounts.
func SyntheticEmail(login string) string {
	return fmt.Sprintf("%s@%s", strings.ToLower(login), CredentialDomain)
}

// Resolve returns the credential identifier for an existing login, or
// ErrNotLoggedIn if no user with that login exists.
func (cr *CredentialResolver) Resolve(ctx context.Context, login string) (string, error) {
	exists, err := cr.store.LoginExists(ctx, login)
	if err != nil {
		return "", fmt.Errorf("check login exists: %w", err)
	}
	if !exists {
		return "", ErrNotLoggedIn
	}
	return SyntheticEmail(login), nil
}
