// Package mail owns the mailbox I/O: fetching inbox messages over IMAP and
// delivering reminder mail over SMTP submission. Everything above this
// package works with already-decoded Message values.
package mail

import "time"

// Message is a decoded inbox message ready for classification. Body is plain
// text (HTML parts are flattened) and capped at maxBodyBytes.
type Message struct {
	ID         string // Message-Id header, or a UID-derived fallback
	Subject    string
	From       string
	Body       string
	ReceivedAt time.Time
}
