package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"fitsoul/internal/model"
	"fitsoul/internal/repository"
)

// IdentityClient talks to the Firebase Identity Toolkit REST API, the
// same surface the mobile SDKs use for email/password and federated
// sign-in. It caches the current session in memory and fans session
// transitions out to registered listeners.
//
// The API key is the public web API key from the Firebase console, not
// a service-account credential.
type IdentityClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	session   *sessionData
	nextID    int
	listeners map[int]repository.AuthStateListener
}

type sessionData struct {
	user    repository.AuthUser
	idToken string
}

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// NewIdentityClient creates a client bound to a Firebase project's web
// API key.
func NewIdentityClient(apiKey string) *IdentityClient {
	return &IdentityClient{
		apiKey:  apiKey,
		baseURL: identityToolkitURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		listeners: make(map[int]repository.AuthStateListener),
	}
}

// CurrentUser returns the cached session's user, nil when signed out.
func (c *IdentityClient) CurrentUser() *repository.AuthUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	user := c.session.user
	return &user
}

// SignInWithEmailAndPassword authenticates an existing account.
func (c *IdentityClient) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*repository.AuthUser, error) {
	var resp authResponse
	err := c.call(ctx, "accounts:signInWithPassword", authPayload{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.establishSession(resp), nil
}

// CreateUserWithEmailAndPassword registers a new account and signs it in.
func (c *IdentityClient) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*repository.AuthUser, error) {
	var resp authResponse
	err := c.call(ctx, "accounts:signUp", authPayload{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.establishSession(resp), nil
}

// SendPasswordResetEmail asks the provider to mail a reset link.
func (c *IdentityClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	var resp authResponse
	return c.call(ctx, "accounts:sendOobCode", authPayload{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}, &resp)
}

// SendEmailVerification mails a verification link to the session user.
func (c *IdentityClient) SendEmailVerification(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return model.ErrNoAuthenticatedUser
	}

	var resp authResponse
	return c.call(ctx, "accounts:sendOobCode", authPayload{
		RequestType: "VERIFY_EMAIL",
		IDToken:     session.idToken,
	}, &resp)
}

// SignInWithCredential exchanges a Google ID token for a session.
func (c *IdentityClient) SignInWithCredential(ctx context.Context, idToken string) (*repository.AuthUser, error) {
	var resp authResponse
	err := c.call(ctx, "accounts:signInWithIdp", authPayload{
		PostBody:            fmt.Sprintf("id_token=%s&providerId=google.com", idToken),
		RequestURI:          "http://localhost",
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.establishSession(resp), nil
}

// SignOut drops the cached session and notifies listeners.
func (c *IdentityClient) SignOut() {
	c.mu.Lock()
	hadSession := c.session != nil
	c.session = nil
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if hadSession {
		for _, listener := range listeners {
			listener(nil)
		}
	}
}

// AddAuthStateListener registers a listener for session transitions.
// The listener fires on every subsequent login and logout, not on
// registration; the initial state is queried via CurrentUser.
func (c *IdentityClient) AddAuthStateListener(listener repository.AuthStateListener) (remove func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = listener
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *IdentityClient) establishSession(resp authResponse) *repository.AuthUser {
	user := repository.AuthUser{
		UID:           resp.LocalID,
		Email:         resp.Email,
		DisplayName:   resp.DisplayName,
		EmailVerified: resp.EmailVerified,
	}

	c.mu.Lock()
	c.session = &sessionData{user: user, idToken: resp.IDToken}
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	for _, listener := range listeners {
		u := user
		listener(&u)
	}

	result := user
	return &result
}

// snapshotListeners must be called with c.mu held.
func (c *IdentityClient) snapshotListeners() []repository.AuthStateListener {
	listeners := make([]repository.AuthStateListener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

type authPayload struct {
	Email               string `json:"email,omitempty"`
	Password            string `json:"password,omitempty"`
	ReturnSecureToken   bool   `json:"returnSecureToken,omitempty"`
	RequestType         string `json:"requestType,omitempty"`
	IDToken             string `json:"idToken,omitempty"`
	PostBody            string `json:"postBody,omitempty"`
	RequestURI          string `json:"requestUri,omitempty"`
	ReturnIdpCredential bool   `json:"returnIdpCredential,omitempty"`
}

type authResponse struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	IDToken       string `json:"idToken"`
	EmailVerified bool   `json:"emailVerified"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// call POSTs a JSON payload to an Identity Toolkit endpoint. Provider
// error codes (EMAIL_NOT_FOUND, INVALID_PASSWORD, ...) are forwarded
// unchanged in the returned error.
func (c *IdentityClient) call(ctx context.Context, endpoint string, payload authPayload, out *authResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return errors.New(apiErr.Error.Message)
		}
		log.Printf("[Auth] %s returned status %d", endpoint, resp.StatusCode)
		return fmt.Errorf("%s failed with status %d", endpoint, resp.StatusCode)
	}

	return json.Unmarshal(respBody, out)
}
