package google

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// ResultListener receives exactly one callback per SignIn invocation:
// either the acquired ID token or a human-readable failure.
type ResultListener interface {
	OnSuccess(idToken string)
	OnFailure(message string)
}

// SignInHelper runs the interactive Google sign-in flow. The desktop
// rendition of the consent screen is an OAuth authorization-code flow
// with a loopback redirect: a short-lived local HTTP listener catches
// the redirect, the code is exchanged for tokens, and the id_token is
// handed to the caller for the identity provider to consume.
type SignInHelper struct {
	config *oauth2.Config
	port   int

	// openBrowser is swappable so tests can capture the consent URL
	// instead of launching anything.
	openBrowser func(url string) error

	mu    sync.Mutex
	token *oauth2.Token
}

const callbackPath = "/oauth2/callback"

func NewSignInHelper() *SignInHelper {
	return &SignInHelper{openBrowser: browse}
}

// Initialize configures the helper for ID-token issuance against the
// given web client ID with the email scope. Must be called before
// SignIn.
func (h *SignInHelper) Initialize(webClientID, clientSecret string, redirectPort int) {
	h.port = redirectPort
	h.config = &oauth2.Config{
		ClientID:     webClientID,
		ClientSecret: clientSecret,
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  fmt.Sprintf("http://127.0.0.1:%d%s", redirectPort, callbackPath),
		Scopes:       []string{"openid", "email"},
	}
}

type callbackResult struct {
	code      string
	failure   string
	cancelled bool
}

// SignIn launches the consent flow and blocks until the user finishes,
// dismisses it, or ctx ends. The listener is invoked exactly once.
// There is no retry; the caller decides whether to start over.
func (h *SignInHelper) SignIn(ctx context.Context, listener ResultListener) {
	if h.config == nil {
		listener.OnFailure("Google Sign-In failed: helper not initialized")
		return
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", h.port))
	if err != nil {
		listener.OnFailure("Google Sign-In failed: " + err.Error())
		return
	}

	state := uuid.New().String()
	results := make(chan callbackResult, 1)

	srv := &http.Server{Handler: h.callbackRouter(state, results)}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[GoogleSignIn] Callback server: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := h.config.AuthCodeURL(state)
	if err := h.openBrowser(authURL); err != nil {
		log.Printf("[GoogleSignIn] Open this URL to continue: %s", authURL)
	}

	select {
	case result := <-results:
		switch {
		case result.cancelled:
			listener.OnFailure("Google Sign-In cancelled")
		case result.failure != "":
			listener.OnFailure(result.failure)
		default:
			h.exchange(ctx, result.code, listener)
		}
	case <-ctx.Done():
		listener.OnFailure("Google Sign-In cancelled")
	}
}

// SignOut drops the cached federated token.
func (h *SignInHelper) SignOut() {
	h.mu.Lock()
	h.token = nil
	h.mu.Unlock()
}

func (h *SignInHelper) callbackRouter(state string, results chan<- callbackResult) http.Handler {
	deliver := func(result callbackResult) {
		select {
		case results <- result:
		default:
		}
	}

	r := chi.NewRouter()
	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		if errCode := q.Get("error"); errCode != "" {
			w.Write([]byte("Sign-in was not completed. You can close this window."))
			if errCode == "access_denied" {
				deliver(callbackResult{cancelled: true})
			} else {
				deliver(callbackResult{failure: "Google Sign-In failed: " + errCode})
			}
			return
		}

		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(callbackResult{failure: "Google Sign-In failed: state mismatch"})
			return
		}

		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			deliver(callbackResult{failure: "Google Sign-In failed: missing authorization code"})
			return
		}

		w.Write([]byte("Signed in. You can close this window."))
		deliver(callbackResult{code: code})
	})
	return r
}

func (h *SignInHelper) exchange(ctx context.Context, code string, listener ResultListener) {
	token, err := h.config.Exchange(ctx, code)
	if err != nil {
		listener.OnFailure("Google Sign-In failed: " + err.Error())
		return
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		listener.OnFailure("Failed to get ID token")
		return
	}

	// Sanity-parse the ID token before handing it on; signature
	// verification is the identity provider's job.
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		listener.OnFailure("Failed to get ID token")
		return
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		listener.OnFailure("Failed to get ID token")
		return
	}

	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	listener.OnSuccess(idToken)
}

func browse(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
