package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

type Flash struct {
	Kind    string `json:"kind"` // success | error | info
	Message string `json:"message"`
}

type Session struct {
	ID        string
	UserID    int64
	Name      string
	Email     string
	Role      string
	APIToken  string
	CSRF      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func CreateSession(ctx context.Context, db *sql.DB, s Session) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO sessions(id, user_id, name, email, role, api_token, csrf, flash, created_at, expires_at)
VALUES(?,?,?,?,?,?,?,'[]',?,?);`,
		s.ID, s.UserID, s.Name, s.Email, s.Role, s.APIToken, s.CSRF,
		formatTime(s.CreatedAt), formatTime(s.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns a live session; expired rows count as missing.
func GetSession(ctx context.Context, db *sql.DB, id string, now time.Time) (Session, error) {
	var s Session
	var created, expires string
	err := db.QueryRowContext(ctx, `
SELECT id, user_id, name, email, role, api_token, csrf, created_at, expires_at
FROM sessions
WHERE id = ? AND expires_at > ?
LIMIT 1;`, id, formatTime(now)).Scan(
		&s.ID, &s.UserID, &s.Name, &s.Email, &s.Role, &s.APIToken, &s.CSRF, &created, &expires,
	)
	if err == sql.ErrNoRows {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	s.CreatedAt = parseTime(created)
	s.ExpiresAt = parseTime(expires)
	return s, nil
}

// TouchSession slides the expiry forward.
func TouchSession(ctx context.Context, db *sql.DB, id string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx, `UPDATE sessions SET expires_at = ? WHERE id = ?;`, formatTime(expiresAt), id)
	return err
}

func DeleteSession(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?;`, id)
	return err
}

func DeleteExpiredSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?;`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// PushFlash queues a toast for the next page the session renders.
func PushFlash(ctx context.Context, db *sql.DB, id string, f Flash) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	if err := tx.QueryRowContext(ctx, `SELECT flash FROM sessions WHERE id = ?;`, id).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return ErrSessionNotFound
		}
		return err
	}
	var list []Flash
	_ = json.Unmarshal([]byte(raw), &list)
	list = append(list, f)
	b, _ := json.Marshal(list)
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET flash = ? WHERE id = ?;`, string(b), id); err != nil {
		return err
	}
	return tx.Commit()
}

// PopFlashes returns queued toasts and clears them.
func PopFlashes(ctx context.Context, db *sql.DB, id string) ([]Flash, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	if err := tx.QueryRowContext(ctx, `SELECT flash FROM sessions WHERE id = ?;`, id).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if raw == "" || raw == "[]" {
		return nil, tx.Commit()
	}
	var list []Flash
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		list = nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET flash = '[]' WHERE id = ?;`, id); err != nil {
		return nil, err
	}
	return list, tx.Commit()
}
