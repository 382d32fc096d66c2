// Package sessionstore is a gorilla/sessions Store that keeps session values
// on the server. The cookie only carries a signed, random session id.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/pscheid92/gamebridge/internal/domain"
)

// ValuePlayerID is the only session value that is persisted.
const ValuePlayerID = "player_id"

type Store struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options
	repo    domain.SessionRepository
}

var _ sessions.Store = (*Store)(nil)

// New creates a store signing cookies with keyPairs, see securecookie.CodecsFromPairs.
func New(repo domain.SessionRepository, opts sessions.Options, keyPairs ...[]byte) *Store {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok && opts.MaxAge > 0 {
			sc.MaxAge(opts.MaxAge)
		}
	}
	return &Store{
		Codecs:  codecs,
		Options: &opts,
		repo:    repo,
	}
}

// Get returns the session cached for this request or loads it.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the session named by the request cookie. A missing, forged or
// expired cookie yields a fresh unsaved session; the decode error is returned
// alongside it like the gorilla stores do.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, cookie.Value, &id, s.Codecs...); err != nil {
		return session, err
	}

	playerID, err := s.repo.Load(r.Context(), id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return session, nil
	}
	if err != nil {
		return session, fmt.Errorf("failed to load session: %w", err)
	}

	session.ID = id
	session.Values[ValuePlayerID] = playerID
	session.IsNew = false
	return session, nil
}

// Save persists the binding and writes the id cookie. MaxAge < 0 deletes the
// server-side entry and expires the cookie. A session without a player id is
// not persisted and sets no cookie.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.repo.Delete(r.Context(), session.ID); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	playerID, ok := session.Values[ValuePlayerID].(string)
	if !ok || playerID == "" {
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.persist(r.Context(), session.ID, playerID, session.Options.MaxAge); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *Store) persist(ctx context.Context, sessionID, playerID string, maxAge int) error {
	ttl := time.Duration(maxAge) * time.Second
	if err := s.repo.Save(ctx, sessionID, playerID, ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
