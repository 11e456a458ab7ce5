package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"fitsoul/internal/model"
	"fitsoul/internal/repository"
	"fitsoul/internal/validation"
)

// Coordinator bridges the validator, the auth gateway and the federated
// broker to the UI. It owns three observable slots and serializes every
// mutation of them on a single dispatch goroutine, the app's "UI
// thread": gateway calls run on their own goroutines and marshal their
// completions back through post.
//
// Each operation that touches uiState takes a monotonic epoch; a
// completion whose epoch has been superseded is discarded, so the last
// issued operation's final state wins. The provider's session listener
// is the source of truth for authState; operation completions only
// drive uiState.
type Coordinator struct {
	gateway repository.AuthGateway

	uiState          *Observable[UiState]
	authState        *Observable[AuthState]
	validationErrors *Observable[map[string]string]

	ctx    context.Context
	cancel context.CancelFunc
	tasks  chan func()
	wg     sync.WaitGroup

	disposed       atomic.Bool
	epoch          atomic.Uint64
	removeListener func()
	closeOnce      sync.Once
}

// NewCoordinator starts the dispatch loop, registers the session-change
// listener and kicks off the initial session check.
func NewCoordinator(gateway repository.AuthGateway, provider repository.IdentityProvider) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		gateway:          gateway,
		uiState:          NewObservable(UiState{}),
		authState:        NewObservable(AuthLoading()),
		validationErrors: NewObservable(map[string]string{}),
		ctx:              ctx,
		cancel:           cancel,
		tasks:            make(chan func(), 16),
	}

	c.wg.Add(1)
	go c.dispatchLoop()

	c.removeListener = provider.AddAuthStateListener(c.onAuthStateChanged)
	c.checkAuthStatus()

	return c
}

// UiState exposes the screen-level observable.
func (c *Coordinator) UiState() *Observable[UiState] {
	return c.uiState
}

// AuthState exposes the session-level observable.
func (c *Coordinator) AuthState() *Observable[AuthState] {
	return c.authState
}

// ValidationErrors exposes the field-error observable.
func (c *Coordinator) ValidationErrors() *Observable[map[string]string] {
	return c.validationErrors
}

func (c *Coordinator) dispatchLoop() {
	defer c.wg.Done()
	for {
		select {
		case task := <-c.tasks:
			task()
		case <-c.ctx.Done():
			return
		}
	}
}

// post marshals fn onto the dispatch goroutine. After Close the task is
// dropped: a disposed coordinator ignores late completions.
func (c *Coordinator) post(fn func()) {
	if c.disposed.Load() {
		return
	}
	select {
	case c.tasks <- fn:
	case <-c.ctx.Done():
	}
}

func (c *Coordinator) onAuthStateChanged(authUser *repository.AuthUser) {
	if authUser != nil {
		go c.refreshAuthState(true)
		return
	}
	c.post(func() {
		c.authState.Set(Unauthenticated())
		c.validationErrors.Set(map[string]string{})
	})
}

func (c *Coordinator) checkAuthStatus() {
	c.post(func() {
		c.authState.Set(AuthLoading())
	})
	if c.gateway.IsSignedIn() {
		go c.refreshAuthState(false)
	} else {
		c.post(func() {
			c.authState.Set(Unauthenticated())
		})
	}
}

// refreshAuthState re-hydrates the user record from the gateway and
// publishes the resulting session state.
func (c *Coordinator) refreshAuthState(reportError bool) {
	result := c.gateway.GetCurrentUser(c.ctx)
	c.post(func() {
		if result.IsSuccess() && result.Value() != nil {
			c.authState.Set(Authenticated(result.Value()))
			return
		}
		c.authState.Set(Unauthenticated())
		if reportError && result.IsFailure() {
			message := errMessage(result.Err(), "Failed to load user profile")
			c.uiState.Set(c.uiState.Get().WithError(message))
		}
	})
}

// SignInWithEmail validates locally, then authenticates through the
// gateway. Validation failures never reach the provider.
func (c *Coordinator) SignInWithEmail(email, password string) {
	if !c.validateEmailPassword(email, password) {
		return
	}

	epoch := c.beginOperation()
	go func() {
		result := c.gateway.SignInWithEmail(c.ctx, email, password)
		c.post(func() {
			if !c.currentEpoch(epoch) {
				return
			}
			state := c.uiState.Get().WithLoading(false)
			if result.IsSuccess() {
				c.uiState.Set(state.WithError(""))
			} else {
				c.uiState.Set(state.WithError(errMessage(result.Err(), model.MsgSignInFailed)))
			}
		})
	}()
}

// SignUpWithEmail validates locally, then creates the account. The
// gateway mirrors the new user into the document store; a mirror
// failure is invisible here.
func (c *Coordinator) SignUpWithEmail(email, password string) {
	if !c.validateEmailPassword(email, password) {
		return
	}

	epoch := c.beginOperation()
	go func() {
		result := c.gateway.SignUpWithEmail(c.ctx, email, password)
		c.post(func() {
			if !c.currentEpoch(epoch) {
				return
			}
			state := c.uiState.Get().WithLoading(false)
			if result.IsSuccess() {
				c.uiState.Set(state.WithSuccess("Account created successfully!"))
			} else {
				c.uiState.Set(state.WithError(errMessage(result.Err(), model.MsgSignUpFailed)))
			}
		})
	}()
}

// SendPasswordResetEmail mails a reset link. An empty email short
// circuits into a field error without touching the provider.
func (c *Coordinator) SendPasswordResetEmail(email string) {
	if strings.TrimSpace(email) == "" {
		c.post(func() {
			c.setValidationError("email", "Email is required")
		})
		return
	}

	epoch := c.beginLoading()
	go func() {
		result := c.gateway.SendPasswordResetEmail(c.ctx, email)
		c.post(func() {
			if !c.currentEpoch(epoch) {
				return
			}
			state := c.uiState.Get().WithLoading(false)
			if result.IsSuccess() {
				c.uiState.Set(state.WithSuccess("Password reset email sent"))
			} else {
				c.uiState.Set(state.WithError(errMessage(result.Err(), "Failed to send password reset email")))
			}
		})
	}()
}

// ResetPassword is an alias for SendPasswordResetEmail kept for the
// forgot-password screen.
func (c *Coordinator) ResetPassword(email string) {
	c.SendPasswordResetEmail(email)
}

// SignInWithGoogle authenticates with a pre-acquired federated ID
// token. An empty token is rejected locally.
func (c *Coordinator) SignInWithGoogle(idToken string) {
	if strings.TrimSpace(idToken) == "" {
		c.post(func() {
			c.uiState.Set(c.uiState.Get().WithError("Google Sign-In failed: Invalid token"))
		})
		return
	}

	epoch := c.beginLoading()
	go func() {
		result := c.gateway.SignInWithGoogle(c.ctx, idToken)
		c.post(func() {
			if !c.currentEpoch(epoch) {
				return
			}
			state := c.uiState.Get().WithLoading(false)
			if result.IsSuccess() {
				c.uiState.Set(state.WithError(""))
			} else {
				c.uiState.Set(state.WithError(errMessage(result.Err(), "Google sign in failed")))
			}
		})
	}()
}

// SignOut clears the provider session and resets every observable.
// Bumping the epoch here discards completions of superseded operations.
func (c *Coordinator) SignOut() {
	c.gateway.SignOut()
	c.epoch.Add(1)
	c.post(func() {
		c.authState.Set(Unauthenticated())
		c.validationErrors.Set(map[string]string{})
		c.uiState.Set(UiState{})
	})
}

// ClearErrors wipes both message slots and all field errors. Idempotent.
func (c *Coordinator) ClearErrors() {
	c.post(func() {
		c.uiState.Set(c.uiState.Get().WithError("").WithSuccess(""))
		c.validationErrors.Set(map[string]string{})
	})
}

// Close deregisters the session listener and stops the dispatch loop.
// Completions still in flight are dropped.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.disposed.Store(true)
		if c.removeListener != nil {
			c.removeListener()
		}
		c.cancel()
		c.wg.Wait()
	})
}

// beginOperation clears field errors, publishes the loading state and
// hands out a fresh epoch.
func (c *Coordinator) beginOperation() uint64 {
	epoch := c.epoch.Add(1)
	c.post(func() {
		c.validationErrors.Set(map[string]string{})
		c.uiState.Set(c.uiState.Get().WithLoading(true).WithError(""))
	})
	return epoch
}

// beginLoading is beginOperation without touching field errors.
func (c *Coordinator) beginLoading() uint64 {
	epoch := c.epoch.Add(1)
	c.post(func() {
		c.uiState.Set(c.uiState.Get().WithLoading(true).WithError(""))
	})
	return epoch
}

func (c *Coordinator) currentEpoch(epoch uint64) bool {
	return c.epoch.Load() == epoch
}

// validateEmailPassword is the fast client-side check in front of both
// email operations. The provider remains authoritative; this only
// rejects obviously bad input. The published map holds the full set of
// field errors, empty when both fields pass.
func (c *Coordinator) validateEmailPassword(email, password string) bool {
	errors := map[string]string{}

	trimmedEmail := strings.TrimSpace(email)
	if trimmedEmail == "" {
		errors["email"] = "Email is required"
	} else if !validation.EmailPattern.MatchString(trimmedEmail) {
		errors["email"] = "Please enter a valid email address"
	}

	if strings.TrimSpace(password) == "" {
		errors["password"] = "Password is required"
	} else if utf8.RuneCountInString(password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}

	c.post(func() {
		c.validationErrors.Set(errors)
	})
	return len(errors) == 0
}

func (c *Coordinator) setValidationError(field, message string) {
	current := c.validationErrors.Get()
	next := make(map[string]string, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[field] = message
	c.validationErrors.Set(next)
}

func errMessage(err error, fallback string) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
