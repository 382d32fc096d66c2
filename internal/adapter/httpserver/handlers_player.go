package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/gamebridge/internal/domain"
	apperrors "github.com/pscheid92/gamebridge/internal/platform/errors"
	"github.com/pscheid92/gamebridge/internal/platform/logging"
)

// testPlayerID answers with a canned record so clients can check the
// backend is reachable without signing in.
const testPlayerID = "test"

const maxAuthCodeBody = 8 << 10

type playerResponse struct {
	PlayerID         string `json:"playerId"`
	DisplayName      string `json:"displayName"`
	VisibleProfile   bool   `json:"visibleProfile"`
	Title            string `json:"title"`
	NeedRefreshToken bool   `json:"needRefreshToken"`
}

func toPlayerResponse(p *domain.Player) playerResponse {
	return playerResponse{
		PlayerID:         p.PlayerID,
		DisplayName:      p.DisplayName,
		VisibleProfile:   p.VisibleProfile,
		Title:            p.Title,
		NeedRefreshToken: p.NeedRefreshToken,
	}
}

var testPlayer = playerResponse{
	PlayerID:         "player_123",
	DisplayName:      "Test player",
	VisibleProfile:   false,
	Title:            "",
	NeedRefreshToken: true,
}

func (s *Server) handleGetPlayer(c echo.Context) error {
	playerID, ok := playerIDParam(c)
	if !ok {
		return handleMalformedPath(c)
	}
	if playerID == testPlayerID {
		return c.JSON(http.StatusOK, testPlayer)
	}
	withPlayerLogging(c, playerID)

	binder := sessionBinder{store: s.sessionStore}
	bound, session, err := binder.boundPlayer(c)
	if err != nil {
		return apperrors.InternalError("failed to load session", err)
	}
	if bound != playerID {
		if err := binder.invalidate(c, session); err != nil {
			return apperrors.InternalError("failed to reset session", err)
		}
		return apperrors.ForbiddenError("session is not signed in as this player")
	}

	p, err := s.app.GetPlayer(c.Request().Context(), playerID)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return apperrors.NotFoundError("player not found")
	}
	if err != nil {
		return apperrors.InternalError("failed to load player", err)
	}

	return c.JSON(http.StatusOK, toPlayerResponse(p))
}

func (s *Server) handlePostPlayer(c echo.Context) error {
	playerID, ok := playerIDParam(c)
	if !ok {
		return handleMalformedPath(c)
	}
	withPlayerLogging(c, playerID)

	binder := sessionBinder{store: s.sessionStore}
	bound, session, err := binder.boundPlayer(c)
	if err != nil {
		return apperrors.InternalError("failed to load session", err)
	}
	if bound != "" && bound != playerID {
		if err := binder.invalidate(c, session); err != nil {
			return apperrors.InternalError("failed to reset session", err)
		}
		return apperrors.ForbiddenError("session is signed in as another player")
	}

	authCode, err := readAuthCode(c.Request().Body)
	if err != nil {
		return apperrors.ValidationError("body must be a JSON string auth code or null")
	}

	ctx := c.Request().Context()
	if authCode == "" {
		_, hasCredential, err := s.app.TouchPlayer(ctx, playerID)
		if err != nil {
			return apperrors.InternalError("failed to load player", err)
		}
		if !hasCredential {
			return apperrors.ValidationError("auth code required")
		}
		return c.NoContent(http.StatusNoContent)
	}

	result, err := s.app.SubmitAuthCode(ctx, playerID, authCode)
	if err != nil {
		return apperrors.InternalError("failed to store player", err)
	}
	if !result.OK() {
		return apperrors.InternalError("auth code exchange failed", result.Err).
			WithField("outcome", result.Outcome.String())
	}

	if err := binder.bind(c, session, playerID); err != nil {
		return apperrors.InternalError("failed to bind session", err)
	}
	return c.JSON(http.StatusOK, toPlayerResponse(result.Player))
}

// playerIDParam returns the id segment. The router lets the param run to
// the end of the path, so an id with a slash means extra segments.
func playerIDParam(c echo.Context) (string, bool) {
	playerID := c.Param("id")
	if playerID == "" || strings.Contains(playerID, "/") {
		return "", false
	}
	return playerID, true
}

func handleMalformedPath(c echo.Context) error {
	return apperrors.ValidationError("expected /player/{id}")
}

// readAuthCode parses a JSON string body. An empty body, null and a blank
// string all mean no code was sent.
func readAuthCode(body io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxAuthCodeBody+1))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	if len(raw) > maxAuthCodeBody {
		return "", errors.New("body too large")
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", nil
	}

	var code *string
	if err := json.Unmarshal([]byte(trimmed), &code); err != nil {
		return "", fmt.Errorf("failed to decode auth code: %w", err)
	}
	if code == nil {
		return "", nil
	}
	return strings.TrimSpace(*code), nil
}

func withPlayerLogging(c echo.Context, playerID string) {
	ctx := logging.WithPlayerID(c.Request().Context(), playerID)
	c.SetRequest(c.Request().WithContext(ctx))
}
