package firebase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// UserDocStore writes user mirror documents into the users collection
// of Cloud Firestore.
//
// The credentials (project ID, client email, private key) come from the
// Firebase console: Project Settings -> Service Accounts -> Generate
// New Private Key.
type UserDocStore struct {
	client *firestore.Client
}

const usersCollection = "users"

// NewUserDocStore initializes the Firebase app and opens a Firestore
// client from service-account credentials.
//
// The private key in .env has literal "\n" strings; the SDK expects
// actual newline characters in the PEM key, so they are replaced here.
func NewUserDocStore(ctx context.Context, projectID, clientEmail, privateKey string) (*UserDocStore, error) {
	privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")

	credsJSON := fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, projectID, privateKey, clientEmail)

	opt := option.WithCredentialsJSON([]byte(credsJSON))
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firestore client: %w", err)
	}

	log.Printf("[Firestore] Initialized for project: %s", projectID)
	return &UserDocStore{client: client}, nil
}

// SetUserDocument performs a full set of users/{uid}. Every write
// replaces the whole document, createdAt included.
func (s *UserDocStore) SetUserDocument(ctx context.Context, uid string, data map[string]interface{}) error {
	if _, err := s.client.Collection(usersCollection).Doc(uid).Set(ctx, data); err != nil {
		return fmt.Errorf("set user document %s: %w", uid, err)
	}
	return nil
}

// Close releases the underlying Firestore client.
func (s *UserDocStore) Close() error {
	return s.client.Close()
}
