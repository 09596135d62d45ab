// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RuntimeDirEnv is the environment variable the plugin loader sets to the
// directory where the daemon may keep persistent state.
const RuntimeDirEnv = "DECKY_PLUGIN_RUNTIME_DIR"

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Runtime RuntimeConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// RuntimeConfig holds persistent-state configuration.
type RuntimeConfig struct {
	// Dir is the directory holding data.db. Resolved from
	// DECKY_PLUGIN_RUNTIME_DIR; in development a temp-dir fallback is
	// allowed, in production an unset variable is a startup failure.
	Dir string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	runtimeDir := flag.String("runtime-dir", "", "Directory for persistent state")
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
		Runtime: RuntimeConfig{
			Dir: getConfigValue(*runtimeDir, RuntimeDirEnv, ""),
		},
	}

	if err := cfg.resolveRuntimeDir(); err != nil {
		return nil, fmt.Errorf("invalid runtime dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development or production)", c.App.Environment)
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

	if c.Runtime.Dir == "" {
		return errors.New("runtime dir cannot be empty after resolution")
	}

	return nil
}

// DatabasePath returns the path of the embedded database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Runtime.Dir, "data.db")
}

// resolveRuntimeDir fills in the runtime directory. An unset directory is
// tolerated only in development, where state lands under the system temp dir;
// in production it is a startup failure so the supervisor notices a broken
// plugin environment instead of the daemon silently writing to /tmp.
func (c *Config) resolveRuntimeDir() error {
	if c.Runtime.Dir == "" {
		if c.App.Environment != "development" {
			return fmt.Errorf("%s is not set", RuntimeDirEnv)
		}
		c.Runtime.Dir = filepath.Join(os.TempDir(), "microsdeck")
	}

	expanded, err := expandPath(c.Runtime.Dir)
	if err != nil {
		return err
	}
	c.Runtime.Dir = expanded

	if err := os.MkdirAll(c.Runtime.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create runtime dir: %w", err)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
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

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
