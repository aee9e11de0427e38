// Package session persists the single device session: access token, last
// logged-in username and numeric user id. One process-wide slot, overwritten
// wholesale on re-login.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/hericraft/campus-api/storage/db"
)

const (
	keyToken    = "moodle_token"
	keyUsername = "last_username"
	keyUserID   = "moodle_user_id"
)

// ErrNoSession means no token is persisted; the caller must force login.
var ErrNoSession = errors.New("session: not logged in")

type Session struct {
	Token    string
	Username string
	UserID   int64
}

// Complete reports whether the session carries the numeric user id.
// A token without an id is a valid transient state between authentication
// and the id lookup; callers must re-resolve or force re-login.
func (s Session) Complete() bool {
	return s.Token != "" && s.UserID != 0
}

type Store struct {
	q *db.Queries
}

func NewStore(q *db.Queries) *Store {
	return &Store{q: q}
}

// Save overwrites the persisted session. A zero UserID only clears the
// stored id when the token also changes owners; each key is written
// independently, last write wins.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if err := s.q.UpsertSessionValue(ctx, db.UpsertSessionValueParams{Key: keyToken, Value: sess.Token}); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := s.q.UpsertSessionValue(ctx, db.UpsertSessionValueParams{Key: keyUsername, Value: sess.Username}); err != nil {
		return fmt.Errorf("save username: %w", err)
	}
	if sess.UserID != 0 {
		if err := s.q.UpsertSessionValue(ctx, db.UpsertSessionValueParams{Key: keyUserID, Value: strconv.FormatInt(sess.UserID, 10)}); err != nil {
			return fmt.Errorf("save user id: %w", err)
		}
	} else if err := s.q.DeleteSessionValue(ctx, keyUserID); err != nil {
		return fmt.Errorf("reset user id: %w", err)
	}
	return nil
}

// SetUserID stores the numeric id once a lookup resolves it.
func (s *Store) SetUserID(ctx context.Context, userID int64) error {
	if err := s.q.UpsertSessionValue(ctx, db.UpsertSessionValueParams{Key: keyUserID, Value: strconv.FormatInt(userID, 10)}); err != nil {
		return fmt.Errorf("save user id: %w", err)
	}
	return nil
}

// Load returns the persisted session or ErrNoSession. A missing or garbled
// user id yields UserID == 0, the torn state Complete reports on.
func (s *Store) Load(ctx context.Context) (Session, error) {
	token, err := s.q.GetSessionValue(ctx, keyToken)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && token == "") {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("load token: %w", err)
	}

	sess := Session{Token: token}

	if username, err := s.q.GetSessionValue(ctx, keyUsername); err == nil {
		sess.Username = username
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("load username: %w", err)
	}

	if raw, err := s.q.GetSessionValue(ctx, keyUserID); err == nil {
		if id, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			sess.UserID = id
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("load user id: %w", err)
	}

	return sess, nil
}

// Clear deletes every session key. Used on logout and on
// authentication-failure recovery.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.q.ClearSessionState(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
