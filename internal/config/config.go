// ABOUTME: gymlog configuration management with backend selection.
// ABOUTME: Handles settings, session identity resolution, and the storage backend factory.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/gymlog/internal/identity"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/storage"
)

// TokenEnv overrides the stored access token when set.
const TokenEnv = "GYMLOG_ACCESS_TOKEN"

// Supported storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// ErrNotSignedIn is returned when neither a token nor a user is configured.
var ErrNotSignedIn = errors.New("not signed in (run 'gymlog login')")

// Config stores gymlog configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "postgres".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage. SQLite puts gymlog.db here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/gymlog.
	DataDir string `json:"data_dir,omitempty"`

	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string `json:"postgres_url,omitempty"`
	// PostgresRole is assumed inside each transaction so row-level security
	// applies. Without it the login role owns the tables and bypasses the
	// policies; only the per-statement owner filters remain.
	PostgresRole string `json:"postgres_role,omitempty"`

	// RecentWindow is how many recent workouts stats are computed over.
	RecentWindow int `json:"recent_window,omitempty"`

	LogLevel string `json:"log_level,omitempty"`
	LogFile  string `json:"log_file,omitempty"`

	// Session
	UserID      string `json:"user_id,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	JWTSecret   string `json:"jwt_secret,omitempty"`
	JWTIssuer   string `json:"jwt_issuer,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetRecentWindow returns the stats window, defaulting to stats.DefaultWindow.
func (c *Config) GetRecentWindow() int {
	if c.RecentWindow <= 0 {
		return stats.DefaultWindow
	}
	return c.RecentWindow
}

// GetLogLevel returns the configured log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetLogFile returns the log file path with ~ expanded, or "" for stderr.
func (c *Config) GetLogFile() string {
	return ExpandPath(c.LogFile)
}

// TokenConfig returns the access-token verification settings.
func (c *Config) TokenConfig() identity.TokenConfig {
	return identity.TokenConfig{Secret: c.JWTSecret, Issuer: c.JWTIssuer}
}

// Identity resolves the signed-in user. An access token, from the
// environment or the config file, takes precedence over a stored user ID.
func (c *Config) Identity() (identity.Identity, error) {
	token := os.Getenv(TokenEnv)
	if token == "" {
		token = c.AccessToken
	}

	if strings.TrimSpace(token) != "" {
		session, err := identity.ParseToken(token, c.TokenConfig())
		if err != nil {
			return identity.Identity{}, fmt.Errorf("verify access token: %w", err)
		}
		return session.Identity, nil
	}

	id := identity.Identity{UserID: strings.TrimSpace(c.UserID)}
	if id.IsZero() {
		return identity.Identity{}, ErrNotSignedIn
	}
	return id, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Store implementation based on the configured backend.
func (c *Config) OpenStorage(ctx context.Context) (storage.Store, error) {
	switch backend := c.GetBackend(); backend {
	case BackendSQLite:
		db, err := storage.Open(filepath.Join(c.GetDataDir(), "gymlog.db"))
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendPostgres:
		if c.PostgresURL == "" {
			return nil, errors.New("postgres backend requires postgres_url")
		}
		pg, err := storage.OpenPostgres(ctx, storage.PGOptions{URL: c.PostgresURL, Role: c.PostgresRole})
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "gymlog", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
