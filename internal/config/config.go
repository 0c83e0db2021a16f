package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Strings for identifiers and secrets, ints for
// TTLs, costs and sizes.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	TokenTTLHours  int    // access token time-to-live in hours
	BcryptCost     int    // bcrypt cost for password hashing
	UploadDir      string // directory where uploaded images are written
	MaxUploadBytes int64  // maximum accepted upload size in bytes
	PublicBaseURL  string // base URL prepended to upload links (optional)
	CORSOrigin     string // allowed CORS origin for the SPA client
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must(); missing values cause
// the program to exit with a fatal log message. Optional values fall back
// to defaults that match a local development setup.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		TokenTTLHours:  intOr("TOKEN_TTL_HOURS", 24),
		BcryptCost:     intOr("BCRYPT_COST", 10),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(intOr("MAX_UPLOAD_BYTES", 5<<20)),
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
		CORSOrigin:     getenv("CORS_ORIGIN", "*"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr converts an optional environment variable to an int, returning the
// default when the variable is unset. A set but malformed value is fatal so
// misconfiguration does not silently fall back.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
