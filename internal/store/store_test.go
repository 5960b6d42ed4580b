package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := Migrate(s.Pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func seedUser(t *testing.T, s *Store) User {
	t.Helper()
	u, err := s.EnsureUser(context.Background(), "student@example.edu", "Student")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	return u
}

func TestMigrateIdempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	if err := Migrate(s.Pool); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestEnsureUser(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s)
	again, err := s.EnsureUser(ctx, u.Email, "Someone Else")
	if err != nil {
		t.Fatalf("ensure existing: %v", err)
	}
	if again.ID != u.ID {
		t.Fatalf("EnsureUser created a second row: %d vs %d", again.ID, u.ID)
	}

	// Default settings materialize with the user.
	st, err := s.Settings(ctx, u.ID)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if st.DefaultReminderDays != 3 || !st.EmailEnabled || st.BrowserEnabled {
		t.Fatalf("default settings = %+v", st)
	}

	if _, err := s.User(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user err = %v, want ErrNotFound", err)
	}
}

func TestOpportunityRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	deadline := time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC)
	id, added, err := s.CreateOpportunity(ctx, OpportunityInsert{
		UserID:                u.ID,
		Title:                 "SDE Intern",
		Company:               "Initech",
		EmailSubject:          "Internship opportunity",
		EmailFrom:             "careers@initech.com",
		EmailBody:             "Apply by December 15, 2026.",
		Deadline:              &deadline,
		ExtractedDeadlineText: "Apply by December 15, 2026",
		ApplicationURL:        "https://initech.com/careers/apply",
		SourceMessageID:       "<m1@initech.com>",
	})
	if err != nil || !added {
		t.Fatalf("create: added=%v err=%v", added, err)
	}

	o, err := s.Opportunity(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if o.Company != "Initech" || o.Status != StatusPending || o.IsUrgent {
		t.Fatalf("opportunity = %+v", o)
	}
	if o.Deadline == nil || !o.Deadline.Equal(deadline) {
		t.Fatalf("deadline = %v, want %v", o.Deadline, deadline)
	}
	if o.ApplicationURL != "https://initech.com/careers/apply" {
		t.Fatalf("url = %q", o.ApplicationURL)
	}

	if _, err := s.Opportunity(ctx, id+1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing opportunity err = %v, want ErrNotFound", err)
	}
}

func TestOpportunityDedupeBySourceMessage(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	in := OpportunityInsert{
		UserID: u.ID, Title: "t", Company: "c",
		EmailSubject: "s", EmailFrom: "f", EmailBody: "b",
		SourceMessageID: "<dup@initech.com>",
	}
	if _, added, err := s.CreateOpportunity(ctx, in); err != nil || !added {
		t.Fatalf("first insert: added=%v err=%v", added, err)
	}
	if _, added, err := s.CreateOpportunity(ctx, in); err != nil || added {
		t.Fatalf("duplicate insert: added=%v err=%v", added, err)
	}

	// Empty source ids are exempt from dedupe.
	in.SourceMessageID = ""
	for i := 0; i < 2; i++ {
		if _, added, err := s.CreateOpportunity(ctx, in); err != nil || !added {
			t.Fatalf("sourceless insert %d: added=%v err=%v", i, added, err)
		}
	}

	opps, err := s.Opportunities(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(opps) != 3 {
		t.Fatalf("got %d opportunities, want 3", len(opps))
	}
}

func TestUpdateOpportunityStatus(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	id, _, err := s.CreateOpportunity(ctx, OpportunityInsert{
		UserID: u.ID, Title: "t", Company: "c",
		EmailSubject: "s", EmailFrom: "f", EmailBody: "b",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.UpdateOpportunityStatus(ctx, id, "bogus"); err == nil {
		t.Fatalf("invalid status accepted")
	}
	if err := s.UpdateOpportunityStatus(ctx, id+1, StatusApplied); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing row err = %v, want ErrNotFound", err)
	}

	if err := s.UpdateOpportunityStatus(ctx, id, StatusApplied); err != nil {
		t.Fatalf("update: %v", err)
	}
	o, err := s.Opportunity(ctx, id)
	if err != nil || o.Status != StatusApplied {
		t.Fatalf("status = %q err = %v", o.Status, err)
	}
}

func TestExpireOverdue(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 7)

	mk := func(d *time.Time, src string) int64 {
		t.Helper()
		id, _, err := s.CreateOpportunity(ctx, OpportunityInsert{
			UserID: u.ID, Title: "t", Company: "c",
			EmailSubject: "s", EmailFrom: "f", EmailBody: "b",
			Deadline: d, SourceMessageID: src,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return id
	}
	overdue := mk(&past, "<a>")
	upcoming := mk(&future, "<b>")
	dateless := mk(nil, "<c>")

	n, err := s.ExpireOverdue(ctx, now)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d rows, want 1", n)
	}

	for id, want := range map[int64]string{
		overdue:  StatusExpired,
		upcoming: StatusPending,
		dateless: StatusPending,
	} {
		o, err := s.Opportunity(ctx, id)
		if err != nil {
			t.Fatalf("load %d: %v", id, err)
		}
		if o.Status != want {
			t.Fatalf("opportunity %d status = %q, want %q", id, o.Status, want)
		}
	}

	// Upcoming deadlines exclude the expired row now.
	up, err := s.UpcomingDeadlines(ctx, u.ID)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(up) != 1 || up[0].ID != upcoming {
		t.Fatalf("upcoming = %+v", up)
	}
}

func TestDueRemindersExcludesSent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	oppID, _, err := s.CreateOpportunity(ctx, OpportunityInsert{
		UserID: u.ID, Title: "t", Company: "c",
		EmailSubject: "s", EmailFrom: "f", EmailBody: "b",
	})
	if err != nil {
		t.Fatalf("create opportunity: %v", err)
	}

	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	mk := func(due time.Time) int64 {
		t.Helper()
		id, err := s.CreateReminder(ctx, ReminderInsert{
			UserID: u.ID, OpportunityID: oppID, DueAt: due, Channel: ChannelEmail,
		})
		if err != nil {
			t.Fatalf("create reminder: %v", err)
		}
		return id
	}
	dueA := mk(now.Add(-time.Hour))
	dueB := mk(now.Add(-time.Minute))
	mk(now.Add(time.Hour)) // future

	due, err := s.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 2 || due[0].ID != dueA || due[1].ID != dueB {
		t.Fatalf("due = %+v", due)
	}

	if err := s.MarkReminderSent(ctx, dueA, now); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	due, err = s.DueReminders(ctx, now)
	if err != nil {
		t.Fatalf("due after send: %v", err)
	}
	if len(due) != 1 || due[0].ID != dueB {
		t.Fatalf("due after send = %+v", due)
	}

	// Marking again is a no-op, never a regression to scheduled.
	if err := s.MarkReminderSent(ctx, dueA, now.Add(time.Hour)); err != nil {
		t.Fatalf("mark sent twice: %v", err)
	}
	all, err := s.Reminders(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, r := range all {
		if r.ID == dueA {
			if r.State != ReminderSent || r.SentAt == nil || !r.SentAt.Equal(now) {
				t.Fatalf("sent reminder = %+v", r)
			}
		}
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	want := UserSettings{
		UserID:              u.ID,
		DefaultReminderDays: 7,
		EmailEnabled:        false,
		BrowserEnabled:      true,
	}
	if err := s.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Settings(ctx, u.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DefaultReminderDays != 7 || got.EmailEnabled || !got.BrowserEnabled {
		t.Fatalf("settings = %+v", got)
	}

	at := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	if err := s.TouchLastSync(ctx, u.ID, at); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, err = s.Settings(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.LastEmailSync == nil || !got.LastEmailSync.Equal(at) {
		t.Fatalf("last sync = %v, want %v", got.LastEmailSync, at)
	}
	// Touch must not clobber the saved knobs.
	if got.DefaultReminderDays != 7 || !got.BrowserEnabled {
		t.Fatalf("touch clobbered settings: %+v", got)
	}
}

func TestEmailLogAndStats(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	logs := []EmailLogInsert{
		{UserID: u.ID, MessageID: "<a>", Subject: "s1", Sender: "x", PlacementRelated: true},
		{UserID: u.ID, MessageID: "<b>", Subject: "s2", Sender: "y", Status: "error", Error: "boom"},
	}
	for _, l := range logs {
		if err := s.CreateEmailLog(ctx, l); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	got, err := s.EmailLogs(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d log rows", len(got))
	}
	for _, l := range got {
		if l.MessageID == "<a>" && (l.Status != "processed" || !l.PlacementRelated) {
			t.Fatalf("row a = %+v", l)
		}
		if l.MessageID == "<b>" && (l.Status != "error" || l.Error != "boom") {
			t.Fatalf("row b = %+v", l)
		}
	}

	deadline := time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC)
	if _, _, err := s.CreateOpportunity(ctx, OpportunityInsert{
		UserID: u.ID, Title: "t", Company: "c",
		EmailSubject: "s", EmailFrom: "f", EmailBody: "b",
		Deadline: &deadline, SourceMessageID: "<a>",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	st, err := s.UserStats(ctx, u.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.ActiveOpportunities != 1 || st.UpcomingDeadlines != 1 || st.ApplicationsSent != 0 || st.EmailsProcessed != 2 {
		t.Fatalf("stats = %+v", st)
	}
}
