package infra

import "github.com/joho/godotenv"

// LoadDotEnv reads .env.local then .env when present. Values already in the
// environment win, and earlier files win over later ones.
func LoadDotEnv() {
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(name)
	}
}
