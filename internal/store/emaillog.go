package store

import (
	"context"
	"fmt"
	"time"
)

type EmailLogInsert struct {
	UserID           int64
	MessageID        string
	Subject          string
	Sender           string
	PlacementRelated bool
	Status           string
	Error            string
}

func (s *Store) CreateEmailLog(ctx context.Context, in EmailLogInsert) error {
	status := in.Status
	if status == "" {
		status = "processed"
	}
	_, err := s.Pool.ExecContext(ctx, `
INSERT INTO email_log(user_id, message_id, subject, sender, placement_related, status, error, processed_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		in.UserID, in.MessageID, in.Subject, in.Sender, in.PlacementRelated,
		status, in.Error, fmtTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}

func (s *Store) EmailLogs(ctx context.Context, userID int64, limit int) ([]EmailLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.Pool.QueryContext(ctx, `
SELECT id, user_id, message_id, subject, sender, placement_related, status, error, processed_at
FROM email_log
WHERE user_id = ?
ORDER BY processed_at DESC
LIMIT ?;`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmailLog
	for rows.Next() {
		var l EmailLog
		var processed string
		if err := rows.Scan(&l.ID, &l.UserID, &l.MessageID, &l.Subject, &l.Sender,
			&l.PlacementRelated, &l.Status, &l.Error, &processed); err != nil {
			return nil, err
		}
		l.ProcessedAt = parseTime(processed)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) UserStats(ctx context.Context, userID int64) (Stats, error) {
	var st Stats
	q := func(dst *int, query string) error {
		return s.Pool.QueryRowContext(ctx, query, userID).Scan(dst)
	}
	if err := q(&st.ActiveOpportunities,
		`SELECT COUNT(*) FROM opportunities WHERE user_id = ? AND status = 'pending';`); err != nil {
		return st, err
	}
	if err := q(&st.UpcomingDeadlines,
		`SELECT COUNT(*) FROM opportunities WHERE user_id = ? AND status = 'pending' AND deadline IS NOT NULL;`); err != nil {
		return st, err
	}
	if err := q(&st.ApplicationsSent,
		`SELECT COUNT(*) FROM opportunities WHERE user_id = ? AND status = 'applied';`); err != nil {
		return st, err
	}
	if err := q(&st.EmailsProcessed,
		`SELECT COUNT(*) FROM email_log WHERE user_id = ?;`); err != nil {
		return st, err
	}
	return st, nil
}
