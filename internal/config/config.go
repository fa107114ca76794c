package config

import (
	"os"
)

type Config struct {
	ServerAddress string
	Env           string

	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string
	// Web API key for the Identity Toolkit endpoints (password sign-in,
	// custom-token exchange, reset emails).
	FirebaseWebAPIKey string

	GeminiAPIKey string
	GeminiModel  string

	// Document id under history/ holding the system prompt and example
	// conversation seed.
	PromptConfigDocID string

	// Accept expired access tokens without verification. Local debugging
	// only; never enable in production.
	AllowExpiredTokens bool

	// Directory for the in-memory store snapshot used when Firestore is
	// unavailable.
	DataDir string
}

func Load() *Config {
	return &Config{
		ServerAddress:           getEnv("SERVER_ADDRESS", ":8080"),
		Env:                     getEnv("APP_ENV", "local"),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		FirebaseWebAPIKey:       getEnv("FIREBASE_WEB_API_KEY", ""),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", ""),
		PromptConfigDocID:       getEnv("PROMPT_CONFIG_DOC_ID", "1XseTZyEJ8G1VhAE58u4"),
		AllowExpiredTokens:      getEnv("ALLOW_EXPIRED_TOKENS", "") == "true",
		DataDir:                 getEnv("DATA_DIR", "./data"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
