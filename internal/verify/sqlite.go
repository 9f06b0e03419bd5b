package verify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ CodeStore = (*SQLiteStore)(nil)

// SQLiteStore persists verification codes to SQLite so they survive restarts.
type SQLiteStore struct {
	db    *sql.DB
	nowFn func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// codes table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "sporely-verify.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS verification_codes (
		user_id TEXT NOT NULL,
		channel TEXT NOT NULL,
		code TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, channel)
	)`); err != nil {
		return nil, fmt.Errorf("create codes table: %w", err)
	}
	return &SQLiteStore{
		db:    db,
		nowFn: func() time.Time { return time.Now().UTC() },
	}, nil
}

// SetNowFunc overrides the time provider for deterministic expiry tests.
func (s *SQLiteStore) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

// Put stores code, replacing any prior code for the same user and channel.
func (s *SQLiteStore) Put(ctx context.Context, code Code) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_codes(user_id,channel,code,expires_at) VALUES(?,?,?,?)
		 ON CONFLICT(user_id,channel) DO UPDATE SET code=excluded.code, expires_at=excluded.expires_at`,
		code.UserID, string(code.Channel), code.Code, code.ExpiresAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert code: %w", err)
	}
	return nil
}

// Get returns the live code for user and channel. Expired codes are treated
// as absent and evicted.
func (s *SQLiteStore) Get(ctx context.Context, userID string, channel Channel) (Code, bool, error) {
	var codeVal, expiresRaw string
	err := s.db.QueryRowContext(ctx,
		`SELECT code, expires_at FROM verification_codes WHERE user_id = ? AND channel = ?`,
		userID, string(channel)).Scan(&codeVal, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return Code{}, false, nil
	}
	if err != nil {
		return Code{}, false, fmt.Errorf("select code: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, expiresRaw)
	if err != nil {
		return Code{}, false, fmt.Errorf("parse expiry: %w", err)
	}
	if !expiresAt.After(s.nowFn()) {
		_ = s.Delete(ctx, userID, channel)
		return Code{}, false, nil
	}
	return Code{UserID: userID, Channel: channel, Code: codeVal, ExpiresAt: expiresAt}, true, nil
}

// Delete removes the code for user and channel, if any.
func (s *SQLiteStore) Delete(ctx context.Context, userID string, channel Channel) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE user_id = ? AND channel = ?`,
		userID, string(channel)); err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
