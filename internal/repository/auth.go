package repository

import (
	"context"
	"log"
	"time"

	"fitsoul/internal/model"
)

// AuthRepository is the facade over the identity provider and the user
// document store. Every operation resolves to a model.Result; nothing
// here panics or throws across the boundary.
type AuthRepository struct {
	provider IdentityProvider
	store    UserStore

	// now is swappable so tests can pin mirror timestamps.
	now func() time.Time
}

// NewAuthRepository wires the gateway to its two backends.
func NewAuthRepository(provider IdentityProvider, store UserStore) *AuthRepository {
	return &AuthRepository{
		provider: provider,
		store:    store,
		now:      time.Now,
	}
}

// IsSignedIn reports whether a cached session exists. Never blocks.
func (r *AuthRepository) IsSignedIn() bool {
	return r.provider.CurrentUser() != nil
}

// GetCurrentUser resolves the cached session into a domain User.
func (r *AuthRepository) GetCurrentUser(ctx context.Context) model.Result[*model.User] {
	authUser := r.provider.CurrentUser()
	if authUser == nil {
		return model.Failure[*model.User](model.ErrNoAuthenticatedUser)
	}
	return model.Success(buildUser(authUser))
}

// SignInWithEmail authenticates with an email/password credential.
func (r *AuthRepository) SignInWithEmail(ctx context.Context, email, password string) model.Result[*model.User] {
	authUser, err := r.provider.SignInWithEmailAndPassword(ctx, email, password)
	if err != nil {
		return model.Failure[*model.User](err)
	}
	if authUser == nil {
		return model.Failure[*model.User](model.ErrNilAuthResult)
	}
	return model.Success(buildUser(authUser))
}

// SignUpWithEmail creates an account and mirrors the new user into the
// document store. A mirror failure does not fail the sign-up: the
// provider already accepted the account, so the error is only logged.
func (r *AuthRepository) SignUpWithEmail(ctx context.Context, email, password string) model.Result[*model.User] {
	authUser, err := r.provider.CreateUserWithEmailAndPassword(ctx, email, password)
	if err != nil {
		return model.Failure[*model.User](err)
	}
	if authUser == nil {
		return model.Failure[*model.User](model.ErrNilAuthResult)
	}

	user := buildUser(authUser)
	r.mirrorUser(ctx, user)
	return model.Success(user)
}

// SendPasswordResetEmail asks the provider to mail a reset link.
func (r *AuthRepository) SendPasswordResetEmail(ctx context.Context, email string) model.Result[model.Void] {
	if err := r.provider.SendPasswordResetEmail(ctx, email); err != nil {
		return model.Failure[model.Void](err)
	}
	return model.Success(model.Void{})
}

// SendEmailVerification mails a verification link to the current user.
func (r *AuthRepository) SendEmailVerification(ctx context.Context) model.Result[model.Void] {
	if r.provider.CurrentUser() == nil {
		return model.Failure[model.Void](model.ErrNoAuthenticatedUser)
	}
	if err := r.provider.SendEmailVerification(ctx); err != nil {
		return model.Failure[model.Void](err)
	}
	return model.Success(model.Void{})
}

// IsEmailVerified reports the verification flag of the current session,
// false when signed out.
func (r *AuthRepository) IsEmailVerified() bool {
	authUser := r.provider.CurrentUser()
	return authUser != nil && authUser.EmailVerified
}

// SignInWithGoogle exchanges a federated ID token for a session and
// mirrors the user like a sign-up.
func (r *AuthRepository) SignInWithGoogle(ctx context.Context, idToken string) model.Result[*model.User] {
	authUser, err := r.provider.SignInWithCredential(ctx, idToken)
	if err != nil {
		return model.Failure[*model.User](err)
	}
	if authUser == nil {
		return model.Failure[*model.User](model.ErrNilAuthResult)
	}

	user := buildUser(authUser)
	r.mirrorUser(ctx, user)
	return model.Success(user)
}

// SignOut clears the provider session. Synchronous, never fails.
func (r *AuthRepository) SignOut() {
	r.provider.SignOut()
}

// mirrorUser writes the user document at users/{uid}. This is a full
// set, so createdAt is overwritten on every federated sign-in; a
// reconciliation task would be needed to repair lost writes.
func (r *AuthRepository) mirrorUser(ctx context.Context, user *model.User) {
	nowMs := r.now().UnixMilli()
	data := map[string]interface{}{
		"uid":         user.UID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"createdAt":   nowMs,
		"lastLoginAt": nowMs,
	}

	if err := r.store.SetUserDocument(ctx, user.UID, data); err != nil {
		log.Printf("[Auth] Failed to mirror user %s: %v", user.UID, err)
	}
}

func buildUser(authUser *AuthUser) *model.User {
	return model.NewUserBuilder().
		UID(authUser.UID).
		Email(authUser.Email).
		DisplayName(authUser.DisplayName).
		Build()
}
