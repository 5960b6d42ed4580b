// Package sched runs the reminder dispatch loop: a fixed-cadence ticker that
// scans for due reminders and sends them through the notifier. One scheduler
// instance is the single writer of reminder state; running more than one
// against the same database needs claim-based fetch, which this engine does
// not do (the process-level flock in cmd/engine enforces the invariant).
package sched

import (
	"context"
	"errors"
	"log"
	"time"

	"placealert-engine/internal/events"
	"placealert-engine/internal/store"
)

type Repo interface {
	DueReminders(ctx context.Context, now time.Time) ([]store.Reminder, error)
	Opportunity(ctx context.Context, id int64) (store.Opportunity, error)
	User(ctx context.Context, id int64) (store.User, error)
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
	MarkOpportunityUrgent(ctx context.Context, id int64) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type Notifier interface {
	SendReminder(ctx context.Context, user store.User, opp store.Opportunity, urgent bool) error
}

type Scheduler struct {
	repo     Repo
	notifier Notifier
	hub      *events.Hub // may be nil

	// Interval is the dispatch cadence. Now is injectable for tests.
	Interval        time.Duration
	DispatchTimeout time.Duration
	Now             func() time.Time
}

func New(repo Repo, notifier Notifier, hub *events.Hub) *Scheduler {
	return &Scheduler{
		repo:            repo,
		notifier:        notifier,
		hub:             hub,
		Interval:        time.Minute,
		DispatchTimeout: 30 * time.Second,
		Now:             time.Now,
	}
}

// Run blocks until ctx is canceled. Ticks execute inline on the loop
// goroutine, so they never overlap: a tick that outlasts the cadence delays
// the next one. Cancellation lets the in-flight tick finish.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[sched] started interval=%s", s.Interval)
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sched] stopped")
			return
		case <-t.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scan-and-send cycle and reports how many reminders went out.
func (s *Scheduler) Tick(ctx context.Context) (sent int) {
	now := s.Now()

	if n, err := s.repo.ExpireOverdue(ctx, now); err != nil {
		log.Printf("[sched] expire overdue: %v", err)
	} else if n > 0 {
		log.Printf("[sched] expired %d overdue opportunities", n)
	}

	due, err := s.repo.DueReminders(ctx, now)
	if err != nil {
		log.Printf("[sched] due scan: %v", err)
		return 0
	}

	for _, r := range due {
		delivered, err := s.dispatch(ctx, r, now)
		if err != nil {
			// stays scheduled; retried next tick
			log.Printf("[sched] reminder %d dispatch: %v", r.ID, err)
			continue
		}
		if delivered {
			sent++
		}
	}
	return sent
}

// dispatch delivers one reminder. delivered=false with a nil error is an
// integrity skip (missing opportunity or user), not a delivery.
func (s *Scheduler) dispatch(ctx context.Context, r store.Reminder, now time.Time) (delivered bool, err error) {
	opp, err := s.repo.Opportunity(ctx, r.OpportunityID)
	if errors.Is(err, store.ErrNotFound) {
		// Data-integrity condition, not transient: skip without transition.
		log.Printf("[sched] reminder %d: opportunity %d not found, skipping", r.ID, r.OpportunityID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	user, err := s.repo.User(ctx, r.UserID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[sched] reminder %d: user %d not found, skipping", r.ID, r.UserID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	urgent := opp.Deadline != nil && !opp.Deadline.After(now.Add(24*time.Hour))
	if urgent && !opp.IsUrgent {
		if err := s.repo.MarkOpportunityUrgent(ctx, opp.ID); err != nil {
			log.Printf("[sched] mark urgent %d: %v", opp.ID, err)
		}
	}

	// Browser reminders surface through the event stream only; mail goes out
	// solely for the email channel.
	if r.Channel == store.ChannelEmail {
		dctx, cancel := context.WithTimeout(ctx, s.DispatchTimeout)
		defer cancel()
		if err := s.notifier.SendReminder(dctx, user, opp, urgent); err != nil {
			return false, err
		}
	}

	// A failure here means the mail went out but the row stays scheduled;
	// the next tick resends. At-least-once, accepted.
	if err := s.repo.MarkReminderSent(ctx, r.ID, now); err != nil {
		return false, err
	}

	if s.hub != nil {
		s.hub.Publish(events.ReminderSent(r.ID, opp.ID, r.Channel))
	}
	log.Printf("[sched] reminder %d sent for %q (channel=%s urgent=%v)", r.ID, opp.Title, r.Channel, urgent)
	return true, nil
}
