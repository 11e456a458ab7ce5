package model

import "errors"

// User is the identity tuple established by a successful sign-in.
// Fields default to empty strings / empty slices rather than nil so
// downstream code never has to null-check provider data.
type User struct {
	UID         string       `json:"uid"`
	Email       string       `json:"email"`
	DisplayName string       `json:"display_name"`
	Goals       []string     `json:"goals"`
	Profile     *UserProfile `json:"profile,omitempty"`
}

// UserProfile carries the onboarding questionnaire answers. Persistence
// layout mirrors these fields one-for-one into the user document.
type UserProfile struct {
	Age          int     `json:"age"`
	Gender       string  `json:"gender"`
	HeightCm     int     `json:"height_cm"`
	WeightKg     float64 `json:"weight_kg"`
	FitnessLevel string  `json:"fitness_level"`
}

// UserBuilder constructs a User, normalizing missing inputs to empty
// values. Once built, the User is treated as a value.
type UserBuilder struct {
	uid         string
	email       string
	displayName string
	goals       []string
	profile     *UserProfile
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{}
}

func (b *UserBuilder) UID(uid string) *UserBuilder {
	b.uid = uid
	return b
}

func (b *UserBuilder) Email(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) DisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

func (b *UserBuilder) Goals(goals []string) *UserBuilder {
	b.goals = goals
	return b
}

func (b *UserBuilder) Profile(profile *UserProfile) *UserBuilder {
	b.profile = profile
	return b
}

func (b *UserBuilder) Build() *User {
	goals := b.goals
	if goals == nil {
		goals = []string{}
	}
	return &User{
		UID:         b.uid,
		Email:       b.email,
		DisplayName: b.displayName,
		Goals:       goals,
		Profile:     b.profile,
	}
}

var (
	// ErrNoAuthenticatedUser is returned when an operation requires a
	// signed-in user and no session exists
	ErrNoAuthenticatedUser = errors.New("No authenticated user")

	// ErrNilAuthResult is returned when the provider reports success but
	// delivers an empty payload
	ErrNilAuthResult = errors.New("Authentication result is null")
)

// Fallback messages used when the provider fails without a message of
// its own. The UI surfaces these verbatim.
const (
	MsgSignInFailed            = "Sign in failed"
	MsgSignUpFailed            = "Sign up failed"
	MsgPasswordResetFailed     = "Password reset failed"
	MsgEmailVerificationFailed = "Email verification failed"
)
