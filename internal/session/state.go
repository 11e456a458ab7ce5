package session

import "fitsoul/internal/model"

// UiState is the screen-level state: a loading flag plus at most one of
// an error or a success message. Transitions return a new value.
type UiState struct {
	Loading        bool
	ErrorMessage   string
	SuccessMessage string
}

func (s UiState) WithLoading(loading bool) UiState {
	s.Loading = loading
	return s
}

// WithError sets the error message and clears any success message.
// An empty message clears both.
func (s UiState) WithError(message string) UiState {
	s.ErrorMessage = message
	s.SuccessMessage = ""
	return s
}

// WithSuccess sets the success message and clears any error.
func (s UiState) WithSuccess(message string) UiState {
	s.SuccessMessage = message
	s.ErrorMessage = ""
	return s
}

type authPhase int

const (
	phaseLoading authPhase = iota
	phaseAuthenticated
	phaseUnauthenticated
)

// AuthState is the session-level state: exactly one of loading,
// authenticated (carrying the user) or unauthenticated.
type AuthState struct {
	phase authPhase
	user  *model.User
}

func AuthLoading() AuthState {
	return AuthState{phase: phaseLoading}
}

func Authenticated(user *model.User) AuthState {
	return AuthState{phase: phaseAuthenticated, user: user}
}

func Unauthenticated() AuthState {
	return AuthState{phase: phaseUnauthenticated}
}

func (s AuthState) IsLoading() bool {
	return s.phase == phaseLoading
}

func (s AuthState) IsAuthenticated() bool {
	return s.phase == phaseAuthenticated
}

func (s AuthState) IsUnauthenticated() bool {
	return s.phase == phaseUnauthenticated
}

// User returns the authenticated user, nil in any other phase.
func (s AuthState) User() *model.User {
	return s.user
}
