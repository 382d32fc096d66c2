package playgames

import (
	"fmt"
	"os"
	"strings"

	"github.com/pscheid92/gamebridge/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// placeholderClientID is what the downloadable sample secrets file contains
// until the developer replaces it.
const placeholderClientID = "ReplaceMe"

// ClientSecrets is the parsed client_secret.json.
type ClientSecrets struct {
	OAuth         *oauth2.Config
	ApplicationID string
}

// LoadClientSecrets reads a Google client secrets file. tokenURL overrides
// the token endpoint from the file when not empty. Every failure wraps
// domain.ErrConfiguration.
func LoadClientSecrets(path, tokenURL string) (*ClientSecrets, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrConfiguration, path, err)
	}

	cfg, err := google.ConfigFromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrConfiguration, path, err)
	}
	if cfg.ClientID == "" || cfg.ClientID == placeholderClientID {
		return nil, fmt.Errorf("%w: %s has no client id, download the app's secrets from the API console", domain.ErrConfiguration, path)
	}

	if tokenURL != "" {
		cfg.Endpoint.TokenURL = tokenURL
	}
	// Auth codes from Play Games sign-in are issued without a redirect.
	cfg.RedirectURL = ""

	return &ClientSecrets{
		OAuth:         cfg,
		ApplicationID: ApplicationIDFromClientID(cfg.ClientID),
	}, nil
}

// ApplicationIDFromClientID returns the numeric prefix of a client id such as
// "123456789-abc.apps.googleusercontent.com", or "" when there is none.
func ApplicationIDFromClientID(clientID string) string {
	idx := strings.Index(clientID, "-")
	if idx <= 0 {
		return ""
	}
	return clientID[:idx]
}
