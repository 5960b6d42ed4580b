package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type ReminderInsert struct {
	UserID        int64
	OpportunityID int64
	DueAt         time.Time
	Channel       string
}

func (s *Store) CreateReminder(ctx context.Context, in ReminderInsert) (int64, error) {
	res, err := s.Pool.ExecContext(ctx, `
INSERT INTO reminders(user_id, opportunity_id, due_at, channel, state, created_at)
VALUES(?, ?, ?, ?, 'scheduled', ?);`,
		in.UserID, in.OpportunityID, fmtTime(in.DueAt), in.Channel, fmtTime(time.Now().UTC()))
	if err != nil {
		return 0, fmt.Errorf("insert reminder: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s *Store) Reminders(ctx context.Context, userID int64) ([]Reminder, error) {
	rows, err := s.Pool.QueryContext(ctx, remSelect+`
WHERE user_id = ? ORDER BY due_at ASC;`, userID)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

// DueReminders returns reminders still scheduled with due_at <= now.
// Sent reminders are never selected again.
func (s *Store) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	rows, err := s.Pool.QueryContext(ctx, remSelect+`
WHERE state = 'scheduled' AND due_at <= ?
ORDER BY due_at ASC;`, fmtTime(now))
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

// MarkReminderSent transitions scheduled -> sent. A reminder already sent is
// left untouched (no error): the dispatch loop may only ever move forward.
func (s *Store) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	_, err := s.Pool.ExecContext(ctx, `
UPDATE reminders SET state = 'sent', sent_at = ?
WHERE id = ? AND state = 'scheduled';`, fmtTime(at), id)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

const remSelect = `
SELECT id, user_id, opportunity_id, due_at, channel, state, sent_at, created_at
FROM reminders
`

func collectReminders(rows *sql.Rows) ([]Reminder, error) {
	defer rows.Close()
	var out []Reminder
	for rows.Next() {
		var r Reminder
		var due, created string
		var sent sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.OpportunityID, &due,
			&r.Channel, &r.State, &sent, &created); err != nil {
			return nil, err
		}
		r.DueAt = parseTime(due)
		r.SentAt = parseTimePtr(sent)
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}
