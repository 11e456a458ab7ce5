package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	FirebaseAPIKey      string
	FirebaseProjectID   string
	FirebaseClientEmail string
	FirebasePrivateKey  string

	GoogleWebClientID  string
	GoogleClientSecret string
	OAuthRedirectPort  int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	redirectPort, err := strconv.Atoi(os.Getenv("OAUTH_REDIRECT_PORT"))
	if err != nil || redirectPort <= 0 {
		redirectPort = 8765
	}

	apiKey := os.Getenv("FIREBASE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY is required")
	}

	return &Config{
		FirebaseAPIKey:      apiKey,
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseClientEmail: os.Getenv("FIREBASE_CLIENT_EMAIL"),
		FirebasePrivateKey:  os.Getenv("FIREBASE_PRIVATE_KEY"),

		GoogleWebClientID:  os.Getenv("GOOGLE_WEB_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectPort:  redirectPort,
	}, nil
}
