package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// EnsureUser returns the user with the given email, creating it (with default
// settings) on first sight.
func (s *Store) EnsureUser(ctx context.Context, email, name string) (User, error) {
	u, err := s.UserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	now := time.Now().UTC()
	res, err := s.Pool.ExecContext(ctx, `
INSERT INTO users(email, name, created_at) VALUES(?, ?, ?);`,
		email, name, fmtTime(now))
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.LastInsertId()

	if _, err := s.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO user_settings(user_id) VALUES(?);`, id); err != nil {
		return User{}, fmt.Errorf("insert settings: %w", err)
	}

	return User{ID: id, Email: email, Name: name, CreatedAt: now}, nil
}

func (s *Store) User(ctx context.Context, id int64) (User, error) {
	return s.scanUser(s.Pool.QueryRowContext(ctx, `
SELECT id, email, name, created_at FROM users WHERE id = ?;`, id))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.Pool.QueryRowContext(ctx, `
SELECT id, email, name, created_at FROM users WHERE email = ?;`, email))
}

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var u User
	var created string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

// Settings returns the user's settings, or defaults if no row exists yet.
func (s *Store) Settings(ctx context.Context, userID int64) (UserSettings, error) {
	var st UserSettings
	var lastSync sql.NullString
	err := s.Pool.QueryRowContext(ctx, `
SELECT user_id, default_reminder_days, email_enabled, browser_enabled, last_email_sync
FROM user_settings WHERE user_id = ?;`, userID).
		Scan(&st.UserID, &st.DefaultReminderDays, &st.EmailEnabled, &st.BrowserEnabled, &lastSync)
	if errors.Is(err, sql.ErrNoRows) {
		return UserSettings{UserID: userID, DefaultReminderDays: 3, EmailEnabled: true}, nil
	}
	if err != nil {
		return UserSettings{}, err
	}
	st.LastEmailSync = parseTimePtr(lastSync)
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st UserSettings) error {
	_, err := s.Pool.ExecContext(ctx, `
INSERT INTO user_settings(user_id, default_reminder_days, email_enabled, browser_enabled, last_email_sync)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  default_reminder_days = excluded.default_reminder_days,
  email_enabled = excluded.email_enabled,
  browser_enabled = excluded.browser_enabled,
  last_email_sync = excluded.last_email_sync;`,
		st.UserID, st.DefaultReminderDays, st.EmailEnabled, st.BrowserEnabled, fmtTimePtr(st.LastEmailSync))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Store) TouchLastSync(ctx context.Context, userID int64, at time.Time) error {
	_, err := s.Pool.ExecContext(ctx, `
INSERT INTO user_settings(user_id, last_email_sync) VALUES(?, ?)
ON CONFLICT(user_id) DO UPDATE SET last_email_sync = excluded.last_email_sync;`,
		userID, fmtTime(at))
	if err != nil {
		return fmt.Errorf("touch last sync: %w", err)
	}
	return nil
}
