// Package notify renders reminder messages and hands them to a mail sender.
// The caller decides urgency; this package only words it.
package notify

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"placealert-engine/internal/store"
)

type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailNotifier delivers deadline reminders by email. Sends are rate-limited;
// mail providers throttle bursts and a backlogged dispatch tick would
// otherwise fire them all at once.
type EmailNotifier struct {
	sender  MailSender
	limiter *rate.Limiter
}

func NewEmailNotifier(sender MailSender) *EmailNotifier {
	return &EmailNotifier{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

func (n *EmailNotifier) SendReminder(ctx context.Context, user store.User, opp store.Opportunity, urgent bool) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	var subject string
	if urgent {
		subject = fmt.Sprintf("URGENT: %s deadline approaching!", opp.Title)
	} else {
		subject = fmt.Sprintf("Reminder: %s application deadline", opp.Title)
	}

	if err := n.sender.Send(ctx, user.Email, subject, renderBody(user, opp, urgent)); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

func renderBody(user store.User, opp store.Opportunity, urgent bool) string {
	deadlineText := "Not specified"
	if opp.Deadline != nil {
		deadlineText = opp.Deadline.Format("Monday, January 2, 2006")
	}

	heading := "Friendly reminder"
	closing := "We recommend applying soon to avoid missing this opportunity."
	if urgent {
		heading = "Urgent reminder"
		closing = "This deadline is approaching soon! Make sure to submit your application as soon as possible."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.Name)
	fmt.Fprintf(&b, "%s: don't forget to apply for the %s position at %s.\n\n", heading, opp.Title, opp.Company)
	fmt.Fprintf(&b, "Deadline: %s\n", deadlineText)
	fmt.Fprintf(&b, "Company: %s\n", opp.Company)
	fmt.Fprintf(&b, "Original email: %s\n", opp.EmailSubject)
	if opp.ApplicationURL != "" {
		fmt.Fprintf(&b, "Apply here: %s\n", opp.ApplicationURL)
	}
	fmt.Fprintf(&b, "\n%s\n\nGood luck with your application!\n\n", closing)
	b.WriteString("--\nThis is an automated reminder from PlaceAlert. Adjust reminder settings in the dashboard.\n")
	return b.String()
}
