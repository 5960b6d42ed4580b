package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"placealert-engine/internal/mail"
	"placealert-engine/internal/store"
)

type fakeFetcher struct {
	msgs []mail.Message
	err  error
}

func (f *fakeFetcher) FetchUnread(_ context.Context, limit int) ([]mail.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.msgs) > limit {
		return f.msgs[:limit], nil
	}
	return f.msgs, nil
}

type fakeSyncRepo struct {
	user     store.User
	settings store.UserSettings

	logs          []store.EmailLogInsert
	opportunities []store.OpportunityInsert
	reminders     []store.ReminderInsert
	seen          map[string]bool
	lastSync      *time.Time

	oppErrFor string // message id whose opportunity insert fails
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{
		user:     store.User{ID: 1, Email: "student@example.edu", Name: "Student"},
		settings: store.UserSettings{UserID: 1, DefaultReminderDays: 3, EmailEnabled: true},
		seen:     map[string]bool{},
	}
}

func (f *fakeSyncRepo) User(_ context.Context, id int64) (store.User, error) {
	if id != f.user.ID {
		return store.User{}, store.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeSyncRepo) Settings(_ context.Context, _ int64) (store.UserSettings, error) {
	return f.settings, nil
}

func (f *fakeSyncRepo) CreateEmailLog(_ context.Context, in store.EmailLogInsert) error {
	f.logs = append(f.logs, in)
	return nil
}

func (f *fakeSyncRepo) CreateOpportunity(_ context.Context, in store.OpportunityInsert) (int64, bool, error) {
	if f.oppErrFor != "" && in.SourceMessageID == f.oppErrFor {
		return 0, false, errors.New("disk full")
	}
	if f.seen[in.SourceMessageID] {
		return 0, false, nil
	}
	f.seen[in.SourceMessageID] = true
	f.opportunities = append(f.opportunities, in)
	return int64(len(f.opportunities)), true, nil
}

func (f *fakeSyncRepo) CreateReminder(_ context.Context, in store.ReminderInsert) (int64, error) {
	f.reminders = append(f.reminders, in)
	return int64(len(f.reminders)), nil
}

func (f *fakeSyncRepo) TouchLastSync(_ context.Context, _ int64, at time.Time) error {
	f.lastSync = &at
	return nil
}

func testService(repo *fakeSyncRepo, fetcher *fakeFetcher, now time.Time) *Service {
	s := New(repo, fetcher, nil)
	s.Now = func() time.Time { return now }
	return s
}

func placementMsg(id string) mail.Message {
	return mail.Message{
		ID:      id,
		Subject: "Internship opportunity at Initech",
		From:    "careers@initech.com",
		Body:    "Apply by December 15, 2026 at https://initech.com/careers/apply today.",
	}
}

func TestRunFullPipeline(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSyncRepo()
	fetcher := &fakeFetcher{msgs: []mail.Message{
		placementMsg("<m1@initech.com>"),
		{ID: "<m2@example.org>", Subject: "Dinner on friday?", From: "friend@example.org", Body: "See you then."},
	}}

	res, err := testService(repo, fetcher, now).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Processed != 2 || res.Matched != 1 || res.Added != 1 {
		t.Fatalf("result = %+v", res)
	}

	if len(repo.opportunities) != 1 {
		t.Fatalf("opportunities = %d", len(repo.opportunities))
	}
	opp := repo.opportunities[0]
	if opp.Company != "Initech" {
		t.Fatalf("company = %q", opp.Company)
	}
	wantDeadline := time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC)
	if opp.Deadline == nil || !opp.Deadline.Equal(wantDeadline) {
		t.Fatalf("deadline = %v, want %v", opp.Deadline, wantDeadline)
	}
	if opp.ApplicationURL != "https://initech.com/careers/apply" {
		t.Fatalf("application url = %q", opp.ApplicationURL)
	}

	// 3-day primary + 24h urgent, both on email.
	if res.RemindersScheduled != 2 || len(repo.reminders) != 2 {
		t.Fatalf("reminders = %d (result %d)", len(repo.reminders), res.RemindersScheduled)
	}
	if !repo.reminders[0].DueAt.Equal(wantDeadline.AddDate(0, 0, -3)) {
		t.Fatalf("primary reminder due at %v", repo.reminders[0].DueAt)
	}

	// Both messages audited.
	if len(repo.logs) != 2 {
		t.Fatalf("email logs = %d", len(repo.logs))
	}
	if repo.lastSync == nil || !repo.lastSync.Equal(now) {
		t.Fatalf("last sync = %v", repo.lastSync)
	}
}

func TestRunSkipsDuplicateMessages(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSyncRepo()
	fetcher := &fakeFetcher{msgs: []mail.Message{placementMsg("<m1@initech.com>")}}
	svc := testService(repo, fetcher, now)

	if _, err := svc.Run(context.Background(), 1); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := svc.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if res.Matched != 1 || res.Added != 0 {
		t.Fatalf("second run result = %+v", res)
	}
	if len(repo.opportunities) != 1 {
		t.Fatalf("duplicate created a second opportunity")
	}
	if len(repo.reminders) != 2 {
		t.Fatalf("duplicate scheduled extra reminders: %d", len(repo.reminders))
	}
}

func TestRunContinuesPastPerMessageFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSyncRepo()
	repo.oppErrFor = "<bad@initech.com>"
	fetcher := &fakeFetcher{msgs: []mail.Message{
		placementMsg("<bad@initech.com>"),
		placementMsg("<good@initech.com>"),
	}}

	res, err := testService(repo, fetcher, now).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run should not fail the batch: %v", err)
	}
	if res.Processed != 2 || res.Added != 1 {
		t.Fatalf("result = %+v", res)
	}

	// The failed message gets an error audit row on top of its processed one.
	var errorRows int
	for _, l := range repo.logs {
		if l.Status == "error" {
			errorRows++
		}
	}
	if errorRows != 1 {
		t.Fatalf("error audit rows = %d, want 1", errorRows)
	}
}

func TestRunEmptyInboxStillTouchesLastSync(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSyncRepo()

	res, err := testService(repo, &fakeFetcher{}, now).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Processed != 0 || res.Matched != 0 || res.Added != 0 {
		t.Fatalf("result = %+v", res)
	}
	if repo.lastSync == nil || !repo.lastSync.Equal(now) {
		t.Fatalf("last sync = %v, want %v after an idle mailbox sync", repo.lastSync, now)
	}
}

func TestRunFetchFailureAborts(t *testing.T) {
	t.Parallel()

	repo := newFakeSyncRepo()
	fetcher := &fakeFetcher{err: errors.New("imap login failed")}

	if _, err := testService(repo, fetcher, time.Now()).Run(context.Background(), 1); err == nil {
		t.Fatalf("expected fetch error to abort the run")
	}
	if len(repo.logs) != 0 {
		t.Fatalf("no audit rows expected on fetch failure")
	}
}

func TestRunUnknownUser(t *testing.T) {
	t.Parallel()

	repo := newFakeSyncRepo()
	if _, err := testService(repo, &fakeFetcher{}, time.Now()).Run(context.Background(), 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRunNoDeadlineNoReminders(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSyncRepo()
	fetcher := &fakeFetcher{msgs: []mail.Message{{
		ID:      "<m3@initech.com>",
		Subject: "Internship opportunity at Initech",
		From:    "careers@initech.com",
		Body:    "We will share the timeline soon.",
	}}}

	res, err := testService(repo, fetcher, now).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Added != 1 || res.RemindersScheduled != 0 {
		t.Fatalf("result = %+v", res)
	}
	if repo.opportunities[0].Deadline != nil {
		t.Fatalf("unexpected deadline %v", repo.opportunities[0].Deadline)
	}
}
