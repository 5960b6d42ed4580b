package store

import "database/sql"

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS opportunities (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id),
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  email_subject TEXT NOT NULL,
  email_from TEXT NOT NULL,
  email_body TEXT NOT NULL,
  deadline TEXT,
  extracted_deadline_text TEXT,
  application_url TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  is_urgent INTEGER NOT NULL DEFAULT 0,
  source_message_id TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS reminders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id),
  opportunity_id INTEGER NOT NULL REFERENCES opportunities(id),
  due_at TEXT NOT NULL,
  channel TEXT NOT NULL,
  state TEXT NOT NULL DEFAULT 'scheduled',
  sent_at TEXT,
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS user_settings (
  user_id INTEGER PRIMARY KEY REFERENCES users(id),
  default_reminder_days INTEGER NOT NULL DEFAULT 3,
  email_enabled INTEGER NOT NULL DEFAULT 1,
  browser_enabled INTEGER NOT NULL DEFAULT 0,
  last_email_sync TEXT
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS email_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id),
  message_id TEXT NOT NULL,
  subject TEXT NOT NULL,
  sender TEXT NOT NULL,
  placement_related INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'processed',
  error TEXT NOT NULL DEFAULT '',
  processed_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	// Dedupe re-synced mail per user. Empty source ids are exempt.
	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_opportunities_source
ON opportunities(user_id, source_message_id)
WHERE source_message_id != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_opportunities_deadline
ON opportunities(status, deadline);
`); err != nil {
		return err
	}

	// The dispatch scan: state = 'scheduled' AND due_at <= now.
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_reminders_due
ON reminders(state, due_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_email_log_user
ON email_log(user_id, processed_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
