//go:build !wasm

package user

import (
	"database/sql"
	"errors"
	"time"

	"github.com/tinywasm/unixid"
	"go.uber.org/zap"
)

func CreateSession(userID, ip, userAgent string) (Session, error) {
	u, err := unixid.NewUnixID()
	if err != nil {
		return Session{}, err
	}

	now := time.Now().Unix()
	sess := Session{
		ID:        u.GetNewID(),
		UserID:    userID,
		ExpiresAt: now + int64(store.config.SessionTTL),
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: now,
	}

	if err := store.exec.Exec(
		`INSERT INTO user_sessions (id, user_id, expires_at, ip, user_agent, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.ExpiresAt, sess.IP, sess.UserAgent, sess.CreatedAt,
	); err != nil {
		return Session{}, err
	}
	store.cache.set(sess.ID, sess)
	return sess, nil
}

func GetSession(id string) (Session, error) {
	if s, ok := store.cache.get(id); ok {
		if s.ExpiresAt < time.Now().Unix() {
			store.cache.delete(id)
			return Session{}, ErrSessionExpired
		}
		return s, nil
	}

	var s Session
	err := store.exec.QueryRow(
		"SELECT id, user_id, expires_at, ip, user_agent, created_at FROM user_sessions WHERE id = ?",
		id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.IP, &s.UserAgent, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}

	if s.ExpiresAt < time.Now().Unix() {
		return Session{}, ErrSessionExpired
	}

	store.cache.set(s.ID, s)
	return s, nil
}

// SessionUser resolves a session id to its owner.
func SessionUser(sessionID string) (User, error) {
	s, err := GetSession(sessionID)
	if err != nil {
		return User{}, err
	}
	return GetUser(s.UserID)
}

func DeleteSession(id string) error {
	store.cache.delete(id)
	return store.exec.Exec("DELETE FROM user_sessions WHERE id = ?", id)
}

func PurgeExpiredSessions() error {
	now := time.Now().Unix()
	if n := store.cache.purge(now); n > 0 {
		store.log.Debug("purged cached sessions", zap.Int("count", n))
	}
	return store.exec.Exec("DELETE FROM user_sessions WHERE expires_at < ?", now)
}
