package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"fitsoul/internal/model"
	"fitsoul/internal/repository"
)

// fakeIdentityToolkit serves canned Identity Toolkit responses and
// records which endpoints were hit.
type fakeIdentityToolkit struct {
	mu       sync.Mutex
	requests []string
	handler  func(endpoint string, body map[string]interface{}) (int, interface{})
}

func (f *fakeIdentityToolkit) serve(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimPrefix(r.URL.Path, "/")

	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, endpoint)
	f.mu.Unlock()

	status, resp := f.handler(endpoint, body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeIdentityToolkit) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(t *testing.T, handler func(endpoint string, body map[string]interface{}) (int, interface{})) (*IdentityClient, *fakeIdentityToolkit) {
	t.Helper()
	fake := &fakeIdentityToolkit{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(srv.Close)

	client := NewIdentityClient("test-api-key")
	client.baseURL = srv.URL
	return client, fake
}

func apiError(message string) (int, interface{}) {
	return http.StatusBadRequest, map[string]interface{}{
		"error": map[string]interface{}{"message": message},
	}
}

func TestIdentityClient_SignInWithEmailAndPassword(t *testing.T) {
	client, _ := newTestClient(t, func(endpoint string, body map[string]interface{}) (int, interface{}) {
		if endpoint != "accounts:signInWithPassword" {
			t.Errorf("endpoint = %q", endpoint)
		}
		if body["email"] != "a@b.co" || body["password"] != "secret1" {
			t.Errorf("payload = %v", body)
		}
		if body["returnSecureToken"] != true {
			t.Error("returnSecureToken must be set")
		}
		return http.StatusOK, map[string]interface{}{
			"localId":     "u1",
			"email":       "a@b.co",
			"displayName": "Alex",
			"idToken":     "session-token",
		}
	})

	user, err := client.SignInWithEmailAndPassword(context.Background(), "a@b.co", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UID != "u1" || user.Email != "a@b.co" || user.DisplayName != "Alex" {
		t.Errorf("user = %+v", user)
	}

	// The session must now be cached.
	current := client.CurrentUser()
	if current == nil || current.UID != "u1" {
		t.Errorf("CurrentUser = %+v", current)
	}
}

func TestIdentityClient_SignIn_ProviderErrorForwarded(t *testing.T) {
	client, _ := newTestClient(t, func(endpoint string, body map[string]interface{}) (int, interface{}) {
		return apiError("INVALID_PASSWORD")
	})

	_, err := client.SignInWithEmailAndPassword(context.Background(), "a@b.co", "bad")
	if err == nil || err.Error() != "INVALID_PASSWORD" {
		t.Errorf("err = %v, want the provider code verbatim", err)
	}
	if client.CurrentUser() != nil {
		t.Error("failed sign-in must not establish a session")
	}
}

func TestIdentityClient_CreateUser(t *testing.T) {
	client, fake := newTestClient(t, func(endpoint string, body map[string]interface{}) (int, interface{}) {
		if endpoint != "accounts:signUp" {
			t.Errorf("endpoint = %q", endpoint)
		}
		return http.StatusOK, map[string]interface{}{
			"localId": "new-uid",
			"email":   body["email"],
			"idToken": "t",
		}
	})

	user, err := client.CreateUserWithEmailAndPassword(context.Background(), "a@b.co", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UID != "new-uid" {
		t.Errorf("UID = %q", user.UID)
	}
	if fake.requestCount() != 1 {
		t.Errorf("requests = %d, want 1", fake.requestCount())
	}
}

func TestIdentityClient_SendPasswordResetEmail(t *testing.T) {
	client, _ := newTestClient(t, func(endpoint string, body map[string]interface{}) (int, interface{}) {
		if endpoint != "accounts:sendOobCode" {
			t.Errorf("endpoint = %q", endpoint)
		}
		if body["requestType"] != "PASSWORD_RESET" || body["email"] != "a@b.co" {
			t.Errorf("payload = %v", body)
		}
		return http.StatusOK, map[string]interface{}{"email": "a@b.co"}
	})

	if err := client.SendPasswordResetEmail(context.Background(), "a@b.co"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIdentityClient_SendEmailVerification(t *testing.T) {
	client, _ := newTestClient(t, func(endpoint string, body map[string]interface{}) (int, interface{}) {
		switch endpoint {
		case "accounts:signInWithPassword":
			return http.StatusOK, map[string]interface{}{"localId": "u1", "idToken": "session-token"}
		case "accounts:sendOobCode":
			if body["requestType"] != "VERIFY_EMAIL" || body["idToken"] != "session-token" {
				t.Errorf("payload = %v", body)
			}
			return http.StatusOK, map[string]interface{}{}
		}
		t.Errorf("unexpected endpoint %q", endpoint)
		return http.StatusInternalServerError, map[string]interface{}{}
	})

	// Without a session the call is rejected locally.
	if err := client.SendEmailVerification(context.Background()); err != model.ErrNoAuthenticatedUser {
		t.Errorf("err = %v, want %v", err, model.ErrNoAuthenticatedUser)
	}

	if _, err := client.SignInWithEmailAndPassword(context.Background(), "a@b.co", "secret1"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if err := client.SendEmailVerification(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIdentityClient_SignInWithCredential(t *testing.T) {
	client, _ := newTestClient(t, func(endpoint string, body map[string]interface{}) (int, interface{}) {
		if endpoint != "accounts:signInWithIdp" {
			t.Errorf("endpoint = %q", endpoint)
		}
		postBody, _ := body["postBody"].(string)
		if !strings.Contains(postBody, "id_token=google-token") || !strings.Contains(postBody, "providerId=google.com") {
			t.Errorf("postBody = %q", postBody)
		}
		return http.StatusOK, map[string]interface{}{
			"localId":       "g-uid",
			"email":         "g@b.co",
			"emailVerified": true,
			"idToken":       "t",
		}
	})

	user, err := client.SignInWithCredential(context.Background(), "google-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UID != "g-uid" || !user.EmailVerified {
		t.Errorf("user = %+v", user)
	}
}

func TestIdentityClient_ListenerLifecycle(t *testing.T) {
	client, _ := newTestClient(t, func(endpoint string, body map[string]interface{}) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{"localId": "u1", "idToken": "t"}
	})

	var mu sync.Mutex
	var emissions []*repository.AuthUser
	remove := client.AddAuthStateListener(func(user *repository.AuthUser) {
		mu.Lock()
		emissions = append(emissions, user)
		mu.Unlock()
	})

	if _, err := client.SignInWithEmailAndPassword(context.Background(), "a@b.co", "secret1"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	client.SignOut()

	mu.Lock()
	if len(emissions) != 2 {
		t.Fatalf("emissions = %d, want login + logout", len(emissions))
	}
	if emissions[0] == nil || emissions[0].UID != "u1" {
		t.Errorf("login emission = %+v", emissions[0])
	}
	if emissions[1] != nil {
		t.Errorf("logout emission = %+v, want nil", emissions[1])
	}
	mu.Unlock()

	// Signing out twice must not emit again, and a removed listener
	// stays silent.
	client.SignOut()
	remove()
	if _, err := client.SignInWithEmailAndPassword(context.Background(), "a@b.co", "secret1"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	mu.Lock()
	if len(emissions) != 2 {
		t.Errorf("emissions = %d, want still 2", len(emissions))
	}
	mu.Unlock()
}
