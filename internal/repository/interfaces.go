package repository

import (
	"context"

	"fitsoul/internal/model"
)

// AuthUser is the identity provider's view of the authenticated
// principal. UID is always present; the other fields may be empty.
type AuthUser struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// AuthStateListener is invoked on every session transition (login,
// logout, token invalidation). The user is nil when the session was
// cleared.
type AuthStateListener func(user *AuthUser)

// IdentityProvider is the consumed surface of the external identity
// provider SDK. Credential storage, retries and token refresh live
// behind this boundary.
type IdentityProvider interface {
	// CurrentUser returns the cached session's user, or nil when no
	// session exists. Never blocks.
	CurrentUser() *AuthUser

	SignInWithEmailAndPassword(ctx context.Context, email, password string) (*AuthUser, error)
	CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*AuthUser, error)
	SendPasswordResetEmail(ctx context.Context, email string) error

	// SendEmailVerification targets the current session's user.
	SendEmailVerification(ctx context.Context) error

	// SignInWithCredential establishes a session from a federated
	// provider ID token.
	SignInWithCredential(ctx context.Context, idToken string) (*AuthUser, error)

	SignOut()

	// AddAuthStateListener registers a session-change listener and
	// returns a function that removes it.
	AddAuthStateListener(listener AuthStateListener) (remove func())
}

// UserStore is the consumed surface of the document store. Only a full
// set is supported, no queries.
type UserStore interface {
	SetUserDocument(ctx context.Context, uid string, data map[string]interface{}) error
}

// AuthGateway is the repository surface the session coordinator drives.
// Implemented by AuthRepository; declared here so tests can swap in a
// mock.
type AuthGateway interface {
	IsSignedIn() bool
	GetCurrentUser(ctx context.Context) model.Result[*model.User]
	SignInWithEmail(ctx context.Context, email, password string) model.Result[*model.User]
	SignUpWithEmail(ctx context.Context, email, password string) model.Result[*model.User]
	SendPasswordResetEmail(ctx context.Context, email string) model.Result[model.Void]
	SendEmailVerification(ctx context.Context) model.Result[model.Void]
	IsEmailVerified() bool
	SignInWithGoogle(ctx context.Context, idToken string) model.Result[*model.User]
	SignOut()
}
