package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	CookieFile string
	Timeout    time.Duration
	Output     string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("GAMEBRIDGE_SERVER", "http://localhost:8765"),
		CookieFile: getEnvOrDefault("GAMEBRIDGE_COOKIE_FILE", defaultCookieFile()),
		Timeout:    30 * time.Second,
		Output:     "text",
	}
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies reads the saved session cookies. A missing file means no session.
func (c *Config) LoadCookies() ([]*http.Cookie, error) {
	data, err := os.ReadFile(c.CookieFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file %s: %w", c.CookieFile, err)
	}

	cookies := make([]*http.Cookie, 0, len(saved))
	for _, s := range saved {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	return cookies, nil
}

// SaveCookies writes the session cookies, or removes the file when the
// server has dropped the session.
func (c *Config) SaveCookies(cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		if err := os.Remove(c.CookieFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cookie file: %w", err)
		}
		return nil
	}

	saved := make([]savedCookie, 0, len(cookies))
	for _, ck := range cookies {
		saved = append(saved, savedCookie{Name: ck.Name, Value: ck.Value})
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.CookieFile), 0o700); err != nil {
		return fmt.Errorf("failed to create cookie dir: %w", err)
	}
	return os.WriteFile(c.CookieFile, data, 0o600)
}

func defaultCookieFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gamebridge/session.json"
	}
	return filepath.Join(home, ".gamebridge", "session.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
