// Package remind computes when deadline reminders should fire. Pure time
// arithmetic; persistence and dispatch live elsewhere.
package remind

import (
	"time"

	"placealert-engine/internal/store"
)

// Spec is one reminder to materialize.
type Spec struct {
	DueAt   time.Time
	Channel string
}

// Compute returns the reminder instants for a deadline under the user's
// settings. The primary instant (deadline minus DefaultReminderDays) fires
// once per enabled channel, defaulting to email when nothing is enabled. An
// urgent instant 24h before the deadline always fires on email, independent
// of the primary outcome. Instants not strictly after now are dropped, so an
// opportunity gets 0-3 reminders. Coinciding windows are not deduped.
func Compute(now, deadline time.Time, settings store.UserSettings) []Spec {
	var out []Spec

	primary := deadline.AddDate(0, 0, -settings.DefaultReminderDays)
	if primary.After(now) {
		var channels []string
		if settings.EmailEnabled {
			channels = append(channels, store.ChannelEmail)
		}
		if settings.BrowserEnabled {
			channels = append(channels, store.ChannelBrowser)
		}
		if len(channels) == 0 {
			channels = append(channels, store.ChannelEmail)
		}
		for _, ch := range channels {
			out = append(out, Spec{DueAt: primary, Channel: ch})
		}
	}

	urgent := deadline.Add(-24 * time.Hour)
	if urgent.After(now) {
		out = append(out, Spec{DueAt: urgent, Channel: store.ChannelEmail})
	}

	return out
}
