// Package sync runs the inbox pipeline: fetch unread mail, classify it,
// extract facts from the hits, persist opportunities, and materialize their
// deadline reminders.
package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"placealert-engine/internal/classify"
	"placealert-engine/internal/events"
	"placealert-engine/internal/extract"
	"placealert-engine/internal/mail"
	"placealert-engine/internal/remind"
	"placealert-engine/internal/store"
)

type Fetcher interface {
	FetchUnread(ctx context.Context, limit int) ([]mail.Message, error)
}

type Repo interface {
	User(ctx context.Context, id int64) (store.User, error)
	Settings(ctx context.Context, userID int64) (store.UserSettings, error)
	CreateEmailLog(ctx context.Context, in store.EmailLogInsert) error
	CreateOpportunity(ctx context.Context, in store.OpportunityInsert) (id int64, added bool, err error)
	CreateReminder(ctx context.Context, in store.ReminderInsert) (int64, error)
	TouchLastSync(ctx context.Context, userID int64, at time.Time) error
}

type Result struct {
	Processed          int `json:"processed"`
	Matched            int `json:"matched"`
	Added              int `json:"added"`
	RemindersScheduled int `json:"remindersScheduled"`
}

type Service struct {
	repo       Repo
	fetcher    Fetcher
	classifier *classify.Classifier
	hub        *events.Hub // may be nil

	// Now is the pipeline clock; extraction's future-date guard and reminder
	// materialization both key off it.
	Now func() time.Time

	MaxMessages  int
	FetchTimeout time.Duration
}

func New(repo Repo, fetcher Fetcher, hub *events.Hub) *Service {
	return &Service{
		repo:         repo,
		fetcher:      fetcher,
		classifier:   classify.New(),
		hub:          hub,
		Now:          time.Now,
		MaxMessages:  20,
		FetchTimeout: 2 * time.Minute,
	}
}

// outcome is the pure classify/extract result for one message.
type outcome struct {
	msg          mail.Message
	related      bool
	deadline     *time.Time
	deadlineText string
	company      string
	appURL       string
}

// Run syncs the user's inbox once. Per-message persistence failures are
// logged and skipped; only fetch or user-lookup failures abort the batch.
func (s *Service) Run(ctx context.Context, userID int64) (Result, error) {
	var res Result

	user, err := s.repo.User(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("load user %d: %w", userID, err)
	}
	settings, err := s.repo.Settings(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("load settings: %w", err)
	}

	fctx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()
	msgs, err := s.fetcher.FetchUnread(fctx, s.MaxMessages)
	if err != nil {
		return res, fmt.Errorf("fetch messages: %w", err)
	}

	now := s.Now()

	// Classification and extraction are pure, so they fan out; persistence
	// below stays sequential (one sqlite writer).
	outcomes := make([]outcome, len(msgs))
	var g errgroup.Group
	g.SetLimit(4)
	for i, m := range msgs {
		i, m := i, m
		g.Go(func() error {
			o := outcome{msg: m}
			o.related = s.classifier.PlacementRelated(m.Subject, m.From, m.Body)
			if o.related {
				if d, text, ok := extract.Deadline(now, m.Subject, m.Body); ok {
					o.deadline = &d
					o.deadlineText = text
				}
				o.company = extract.Company(m.From, m.Subject, m.Body)
				if u, ok := extract.ApplicationURL(m.Body); ok {
					o.appURL = u
				}
			}
			outcomes[i] = o
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if err := s.persistOne(ctx, user, settings, now, o, &res); err != nil {
			log.Printf("[sync] message %s: %v", o.msg.ID, err)
			_ = s.repo.CreateEmailLog(ctx, store.EmailLogInsert{
				UserID:           user.ID,
				MessageID:        o.msg.ID,
				Subject:          o.msg.Subject,
				Sender:           o.msg.From,
				PlacementRelated: o.related,
				Status:           "error",
				Error:            err.Error(),
			})
		}
		res.Processed++
	}

	if err := s.repo.TouchLastSync(ctx, userID, now); err != nil {
		log.Printf("[sync] touch last sync: %v", err)
	}

	if s.hub != nil {
		s.hub.Publish(events.SyncDone(res.Processed, res.Matched, res.Added))
	}
	log.Printf("[sync] user=%d processed=%d matched=%d added=%d reminders=%d",
		userID, res.Processed, res.Matched, res.Added, res.RemindersScheduled)
	return res, nil
}

func (s *Service) persistOne(ctx context.Context, user store.User, settings store.UserSettings, now time.Time, o outcome, res *Result) error {
	if err := s.repo.CreateEmailLog(ctx, store.EmailLogInsert{
		UserID:           user.ID,
		MessageID:        o.msg.ID,
		Subject:          o.msg.Subject,
		Sender:           o.msg.From,
		PlacementRelated: o.related,
		Status:           "processed",
	}); err != nil {
		return err
	}

	if !o.related {
		return nil
	}
	res.Matched++

	oppID, added, err := s.repo.CreateOpportunity(ctx, store.OpportunityInsert{
		UserID:                user.ID,
		Title:                 o.msg.Subject,
		Company:               o.company,
		EmailSubject:          o.msg.Subject,
		EmailFrom:             o.msg.From,
		EmailBody:             o.msg.Body,
		Deadline:              o.deadline,
		ExtractedDeadlineText: o.deadlineText,
		ApplicationURL:        o.appURL,
		SourceMessageID:       o.msg.ID,
	})
	if err != nil {
		return err
	}
	if !added {
		// already seen this message on a previous sync
		return nil
	}
	res.Added++
	if s.hub != nil {
		s.hub.Publish(events.OpportunityCreated(oppID))
	}

	if o.deadline == nil {
		return nil
	}
	for _, spec := range remind.Compute(now, *o.deadline, settings) {
		if _, err := s.repo.CreateReminder(ctx, store.ReminderInsert{
			UserID:        user.ID,
			OpportunityID: oppID,
			DueAt:         spec.DueAt,
			Channel:       spec.Channel,
		}); err != nil {
			return fmt.Errorf("schedule reminder: %w", err)
		}
		res.RemindersScheduled++
	}
	return nil
}
