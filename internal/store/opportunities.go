package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type OpportunityInsert struct {
	UserID                int64
	Title                 string
	Company               string
	EmailSubject          string
	EmailFrom             string
	EmailBody             string
	Deadline              *time.Time
	ExtractedDeadlineText string
	ApplicationURL        string
	SourceMessageID       string
}

// CreateOpportunity inserts a pending opportunity. A duplicate
// source_message_id for the same user is silently skipped (added=false);
// relies on the partial unique index idx_opportunities_source.
func (s *Store) CreateOpportunity(ctx context.Context, in OpportunityInsert) (id int64, added bool, err error) {
	now := time.Now().UTC()
	_, err = s.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO opportunities
  (user_id, title, company, email_subject, email_from, email_body,
   deadline, extracted_deadline_text, application_url, status, is_urgent,
   source_message_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', 0, ?, ?);`,
		in.UserID, in.Title, in.Company, in.EmailSubject, in.EmailFrom, in.EmailBody,
		fmtTimePtr(in.Deadline), in.ExtractedDeadlineText, in.ApplicationURL,
		in.SourceMessageID, fmtTime(now))
	if err != nil {
		return 0, false, fmt.Errorf("insert opportunity: %w", err)
	}

	var changes int
	if err := s.Pool.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return 0, false, err
	}
	if changes == 0 {
		return 0, false, nil
	}

	if err := s.Pool.QueryRowContext(ctx, `SELECT last_insert_rowid();`).Scan(&id); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *Store) Opportunity(ctx context.Context, id int64) (Opportunity, error) {
	row := s.Pool.QueryRowContext(ctx, oppSelect+`WHERE id = ?;`, id)
	o, err := scanOpportunity(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Opportunity{}, ErrNotFound
	}
	return o, err
}

func (s *Store) Opportunities(ctx context.Context, userID int64) ([]Opportunity, error) {
	rows, err := s.Pool.QueryContext(ctx, oppSelect+`
WHERE user_id = ? ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	return collectOpportunities(rows)
}

// UpcomingDeadlines lists pending opportunities with a deadline, soonest first.
func (s *Store) UpcomingDeadlines(ctx context.Context, userID int64) ([]Opportunity, error) {
	rows, err := s.Pool.QueryContext(ctx, oppSelect+`
WHERE user_id = ? AND status = 'pending' AND deadline IS NOT NULL
ORDER BY deadline ASC;`, userID)
	if err != nil {
		return nil, err
	}
	return collectOpportunities(rows)
}

func (s *Store) UpdateOpportunityStatus(ctx context.Context, id int64, status string) error {
	if status != StatusPending && status != StatusApplied && status != StatusExpired {
		return fmt.Errorf("invalid status %q", status)
	}
	res, err := s.Pool.ExecContext(ctx, `
UPDATE opportunities SET status = ? WHERE id = ?;`, status, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpireOverdue flips pending opportunities whose deadline has passed to
// expired. Returns the number of rows changed.
func (s *Store) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.Pool.ExecContext(ctx, `
UPDATE opportunities SET status = 'expired'
WHERE status = 'pending' AND deadline IS NOT NULL AND deadline <= ?;`,
		fmtTime(now))
	if err != nil {
		return 0, fmt.Errorf("expire overdue: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) MarkOpportunityUrgent(ctx context.Context, id int64) error {
	_, err := s.Pool.ExecContext(ctx, `
UPDATE opportunities SET is_urgent = 1 WHERE id = ?;`, id)
	return err
}

const oppSelect = `
SELECT id, user_id, title, company, email_subject, email_from, email_body,
       deadline, extracted_deadline_text, application_url, status, is_urgent,
       source_message_id, created_at
FROM opportunities
`

func scanOpportunity(scan func(dest ...any) error) (Opportunity, error) {
	var o Opportunity
	var deadline, extracted, appURL sql.NullString
	var created string
	err := scan(&o.ID, &o.UserID, &o.Title, &o.Company, &o.EmailSubject,
		&o.EmailFrom, &o.EmailBody, &deadline, &extracted, &appURL,
		&o.Status, &o.IsUrgent, &o.SourceMessageID, &created)
	if err != nil {
		return Opportunity{}, err
	}
	o.Deadline = parseTimePtr(deadline)
	o.ExtractedDeadlineText = extracted.String
	o.ApplicationURL = appURL.String
	o.CreatedAt = parseTime(created)
	return o, nil
}

func collectOpportunities(rows *sql.Rows) ([]Opportunity, error) {
	defer rows.Close()
	var out []Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
