// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Server  ServerConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	Share   ShareConfig
	Vault   VaultConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds storage path configuration. The document store, search
// index and card image cache all live under BasePath.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	PublicURL    string        // Base URL for share links and the sitemap
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey []byte
	// Access token lifetime (default: 24h)
	AccessTokenDuration time.Duration
}

// CatalogConfig holds card catalog API configuration.
type CatalogConfig struct {
	// APIKey for the primary card API. Optional; unauthenticated requests
	// get a lower rate limit from the provider.
	APIKey string
	// CacheTTL controls how long card and set payloads stay fresh
	// (default: 168h / one week).
	CacheTTL time.Duration
	// FallbackEnabled toggles the secondary provider (default: true).
	FallbackEnabled bool
}

// ShareConfig holds share link configuration.
type ShareConfig struct {
	// DefaultTTL is applied when a share is created without an expiry.
	// Zero means links never expire.
	DefaultTTL time.Duration
	// ViewCooldown is the window during which repeat views from the same
	// viewer don't increment counters (default: 1h).
	ViewCooldown time.Duration
}

// VaultConfig holds offline vault configuration.
type VaultConfig struct {
	// Path is the vault directory for exports and watched imports
	// (default: {data}/vault).
	Path string
	// WatchImports toggles the fsnotify importer (default: true).
	WatchImports bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for server data")
	serverName := flag.String("server-name", "", "Name for the server")
	publicURL := flag.String("public-url", "", "Public base URL for share links")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 24h)")
	catalogAPIKey := flag.String("catalog-api-key", "", "API key for the primary card API")
	catalogCacheTTL := flag.String("catalog-cache-ttl", "", "Card cache freshness window (default: 168h)")
	catalogFallback := flag.String("catalog-fallback", "", "Enable the fallback card API (default: true)")
	shareTTL := flag.String("share-ttl", "", "Default share link lifetime (0 = never expires)")
	vaultPath := flag.String("vault-path", "", "Path for the offline vault")
	vaultWatch := flag.String("vault-watch", "", "Watch the vault for imports (default: true)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name:      getConfigValue(*serverName, "SERVER_NAME", "Binder Server"),
			PublicURL: getConfigValue(*publicURL, "PUBLIC_URL", "http://localhost:8080"),
			Port:      getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Catalog: CatalogConfig{
			APIKey:          getConfigValue(*catalogAPIKey, "CATALOG_API_KEY", ""),
			FallbackEnabled: getBoolConfigValue(*catalogFallback, "CATALOG_FALLBACK", true),
		},
		Vault: VaultConfig{
			Path:         getConfigValue(*vaultPath, "VAULT_PATH", ""),
			WatchImports: getBoolConfigValue(*vaultWatch, "VAULT_WATCH", true),
		},
	}

	var err error
	if cfg.Auth.AccessTokenDuration, err = parseDurationValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Catalog.CacheTTL, err = parseDurationValue(*catalogCacheTTL, "CATALOG_CACHE_TTL", "168h"); err != nil {
		return nil, err
	}
	if cfg.Share.DefaultTTL, err = parseDurationValue(*shareTTL, "SHARE_TTL", "0s"); err != nil {
		return nil, err
	}
	if cfg.Share.ViewCooldown, err = parseDurationValue("", "SHARE_VIEW_COOLDOWN", "1h"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandVaultPath(); err != nil {
		return nil, fmt.Errorf("invalid vault path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Share.DefaultTTL < 0 {
		return errors.New("share TTL cannot be negative")
	}

	return nil
}

// StorePath returns the document store directory.
func (c *Config) StorePath() string {
	return filepath.Join(c.Data.BasePath, "store")
}

// SearchPath returns the search index directory.
func (c *Config) SearchPath() string {
	return filepath.Join(c.Data.BasePath, "search")
}

// ImageCachePath returns the card image cache directory.
func (c *Config) ImageCachePath() string {
	return filepath.Join(c.Data.BasePath, "cache", "images")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute, defaulting to
// ~/BinderServer/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "BinderServer", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandVaultPath defaults the vault to {data}/vault.
func (c *Config) expandVaultPath() error {
	defaultPath := filepath.Join(c.Data.BasePath, "vault")

	expanded, err := expandPath(c.Vault.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Vault.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
