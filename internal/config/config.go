package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Server bind address (host:port)
	ServerAddr string

	// Public base URL of the gateway, used to build the SSO callback URL
	ServerURL string

	// Secret used to sign session tokens and the pending-login cookie
	JWTSecret string

	// Session token lifetime
	TokenTTL time.Duration

	// Whether session and pending-login cookies carry the Secure flag.
	// The original deployment ran behind plain HTTP inside the cluster,
	// so this defaults to false.
	CookieSecure bool

	// SSO (CAS) configuration
	SSO SSOConfig

	// Upstream request timeout applied by the dispatcher
	ProxyTimeout time.Duration

	// Role and permission tables
	Roles RolesConfig

	// Backend service registry: logical name -> base URL
	Services map[string]string

	// Database connection string (DSN) for the hint services
	DatabaseURL string

	// Enable debug logging
	Debug bool
}

// SSOConfig holds the external single-sign-on (CAS) settings.
// The gateway never implements the protocol server side; it only
// bounces browsers to BaseURL and validates returned tickets.
type SSOConfig struct {
	// BaseURL is the CAS server root (e.g., "https://login.cs.vt.edu/cas")
	BaseURL string

	// Version selects the validation endpoint: "3.0" uses /p3/serviceValidate,
	// "2.0" uses /serviceValidate
	Version string
}

// RolesConfig holds the static principal->role and role->methods tables.
// Loaded once at startup and never mutated at request time.
type RolesConfig struct {
	// PrincipalRoles maps a principal id (SSO pid) to a role name
	PrincipalRoles map[string]string

	// DefaultRole is assigned to authenticated principals not listed above
	DefaultRole string

	// Permissions maps a role name to the HTTP methods it may invoke
	Permissions map[string][]string
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":3000"),
		ServerURL:    getEnv("SERVER_URL", "http://localhost:3000"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 24*time.Hour),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		SSO: SSOConfig{
			BaseURL: getEnv("SSO_URL", ""),
			Version: getEnv("SSO_VERSION", "3.0"),
		},
		ProxyTimeout: getEnvDuration("PROXY_TIMEOUT", 60*time.Second),
		Roles: RolesConfig{
			PrincipalRoles: parsePrincipalRoles(getEnv("USER_ROLES", "")),
			DefaultRole:    getEnv("DEFAULT_ROLE", "viewer"),
			Permissions:    defaultPermissions(),
		},
		Services: map[string]string{
			"chatbot": getEnv("CHATBOT_URL", "http://chatbotservice:3000"),
			"create":  getEnv("CREATE_URL", "http://create-service:3000"),
			"update":  getEnv("UPDATE_URL", "http://update-service:3000"),
			"delete":  getEnv("DELETE_URL", "http://delete-service:3000"),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Debug:       getEnvBool("DEBUG", false),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SSO.BaseURL == "" {
		return nil, fmt.Errorf("SSO_URL is required")
	}
	if cfg.SSO.Version != "3.0" && cfg.SSO.Version != "2.0" {
		return nil, fmt.Errorf("SSO_VERSION must be \"2.0\" or \"3.0\", got %q", cfg.SSO.Version)
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("SERVER_URL is required")
	}

	return cfg, nil
}

// HintsConfig holds the configuration of a hint service process. Kept
// separate from the gateway Config so a record service never demands the
// gateway's secrets.
type HintsConfig struct {
	// Server bind address (host:port)
	ServerAddr string

	// Database connection string (DSN)
	DatabaseURL string
}

// LoadHints reads hint service configuration from environment variables.
func LoadHints() (*HintsConfig, error) {
	cfg := &HintsConfig{
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

// defaultPermissions returns the built-in role->methods table.
// viewer reads, editor reads and modifies, admin does everything.
func defaultPermissions() map[string][]string {
	return map[string][]string{
		"viewer": {"GET"},
		"editor": {"GET", "PUT"},
		"admin":  {"GET", "POST", "PUT", "DELETE"},
	}
}

// parsePrincipalRoles parses a "pid:role,pid:role" list into a map.
// Malformed entries are skipped rather than rejected so a single typo
// does not take the gateway down; unknown principals fall back to the
// default role anyway.
func parsePrincipalRoles(raw string) map[string]string {
	roles := make(map[string]string)
	if raw == "" {
		return roles
	}
	for _, pair := range strings.Split(raw, ",") {
		pid, role, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || pid == "" || role == "" {
			continue
		}
		roles[pid] = role
	}
	return roles
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
