package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Environment overrides applied by ApplyEnv.
const (
	EnvRemoteURL = "OASIS_REMOTE_URL"
	EnvCacheDir  = "OASIS_CACHE_DIR"
	EnvLogLevel  = "OASIS_LOG_LEVEL"
)

// LoadDotEnv reads KEY=VALUE lines from path (e.g. ".env") into the process
// environment. Blank lines and # comments are skipped, surrounding quotes
// are removed, and variables already set are left alone. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		value = unquote(strings.TrimSpace(value))
		if _, set := os.LookupEnv(key); set {
			continue
		}
		_ = os.Setenv(key, value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"' || v[0] == '\'' && v[len(v)-1] == '\'') {
		return v[1 : len(v)-1]
	}
	return v
}

// ApplyEnv returns c with OASIS_* environment overrides applied.
func ApplyEnv(c Config) Config {
	if v, ok := os.LookupEnv(EnvRemoteURL); ok && v != "" {
		c.RemoteURL = v
	}
	if v, ok := os.LookupEnv(EnvCacheDir); ok && v != "" {
		c.CacheDir = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return c
}
