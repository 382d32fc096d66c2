package httpserver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/gamebridge/internal/adapter/sessionstore"
)

// sessionBinder ties the caller's session to at most one player id.
type sessionBinder struct {
	store sessions.Store
}

// boundPlayer returns the player id the session is bound to, or "" for an
// unbound session. A forged, expired or otherwise undecodable cookie counts
// as unbound; a failing session repository is returned as an error.
func (b sessionBinder) boundPlayer(c echo.Context) (string, *sessions.Session, error) {
	session, err := b.store.Get(c.Request(), sessionName)
	if err != nil {
		if !isCookieDecodeError(err) {
			return "", nil, fmt.Errorf("failed to load session: %w", err)
		}
		slog.DebugContext(c.Request().Context(), "Ignoring unreadable session cookie", "error", err)
	}
	playerID, _ := session.Values[sessionstore.ValuePlayerID].(string)
	return playerID, session, nil
}

// invalidate drops the server-side binding and expires the cookie.
func (b sessionBinder) invalidate(c echo.Context, session *sessions.Session) error {
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// bind issues a new session id bound to playerID. A previous session id is
// invalidated first so a bound id is never one the caller brought along.
func (b sessionBinder) bind(c echo.Context, session *sessions.Session, playerID string) error {
	if session.ID != "" {
		if err := b.invalidate(c, session); err != nil {
			return err
		}
	}

	fresh, err := b.store.New(c.Request(), sessionName)
	if err != nil {
		if !isCookieDecodeError(err) {
			return fmt.Errorf("failed to start session: %w", err)
		}
		slog.DebugContext(c.Request().Context(), "Starting session without previous cookie", "error", err)
	}
	fresh.ID = ""
	fresh.Values[sessionstore.ValuePlayerID] = playerID
	if err := fresh.Save(c.Request(), c.Response().Writer); err != nil {
		return fmt.Errorf("failed to bind session: %w", err)
	}
	return nil
}

func isCookieDecodeError(err error) bool {
	var cookieErr securecookie.Error
	return errors.As(err, &cookieErr) && cookieErr.IsDecode()
}
