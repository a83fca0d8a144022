package db

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	envProvider = "SQLZ_PROVIDER"
	envDSN      = "SQLZ_DSN"
)

// OpenFromEnv connects using SQLZ_PROVIDER and SQLZ_DSN. A .env file in
// the working directory is loaded first when present; real environment
// variables win over the file.
func OpenFromEnv(opts ...Option) (*Conn, error) {
	// Load ignores a missing file; only the variables matter.
	_ = godotenv.Load()

	provider := os.Getenv(envProvider)
	if provider == "" {
		return nil, fmt.Errorf("%s is not set", envProvider)
	}
	dsn := os.Getenv(envDSN)
	if dsn == "" {
		return nil, fmt.Errorf("%s is not set", envDSN)
	}
	return Open(provider, dsn, opts...)
}
