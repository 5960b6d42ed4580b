package store

import "time"

// Opportunity status values. Transitions: pending -> applied (user action),
// pending -> expired (deadline sweep). Rows are never deleted by the engine.
const (
	StatusPending = "pending"
	StatusApplied = "applied"
	StatusExpired = "expired"
)

// Reminder states. scheduled -> sent is the only transition.
const (
	ReminderScheduled = "scheduled"
	ReminderSent      = "sent"
)

// Reminder channels.
const (
	ChannelEmail   = "email"
	ChannelBrowser = "browser"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Opportunity struct {
	ID                    int64      `json:"id"`
	UserID                int64      `json:"userId"`
	Title                 string     `json:"title"`
	Company               string     `json:"company"`
	EmailSubject          string     `json:"emailSubject"`
	EmailFrom             string     `json:"emailFrom"`
	EmailBody             string     `json:"emailBody"`
	Deadline              *time.Time `json:"deadline,omitempty"`
	ExtractedDeadlineText string     `json:"extractedDeadlineText,omitempty"`
	ApplicationURL        string     `json:"applicationUrl,omitempty"`
	Status                string     `json:"status"`
	IsUrgent              bool       `json:"isUrgent"`
	SourceMessageID       string     `json:"sourceMessageId"`
	CreatedAt             time.Time  `json:"createdAt"`
}

type Reminder struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	OpportunityID int64      `json:"opportunityId"`
	DueAt         time.Time  `json:"dueAt"`
	Channel       string     `json:"channel"`
	State         string     `json:"state"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type UserSettings struct {
	UserID              int64      `json:"userId"`
	DefaultReminderDays int        `json:"defaultReminderDays"`
	EmailEnabled        bool       `json:"emailEnabled"`
	BrowserEnabled      bool       `json:"browserEnabled"`
	LastEmailSync       *time.Time `json:"lastEmailSync,omitempty"`
}

// EmailLog is the per-message processing audit row.
type EmailLog struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	MessageID        string    `json:"messageId"`
	Subject          string    `json:"subject"`
	Sender           string    `json:"sender"`
	PlacementRelated bool      `json:"placementRelated"`
	Status           string    `json:"status"` // processed | error
	Error            string    `json:"error,omitempty"`
	ProcessedAt      time.Time `json:"processedAt"`
}

type Stats struct {
	ActiveOpportunities int `json:"activeOpportunities"`
	UpcomingDeadlines   int `json:"upcomingDeadlines"`
	ApplicationsSent    int `json:"applicationsSent"`
	EmailsProcessed     int `json:"emailsProcessed"`
}
