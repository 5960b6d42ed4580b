package events

import (
	"encoding/json"
	"time"
)

// Event types published by the engine.
const (
	TypeOpportunityCreated = "opportunity_created"
	TypeReminderSent       = "reminder_sent"
	TypeSyncDone           = "sync_done"
)

type Event struct {
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

func Make(typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type: typ,
		At:   time.Now().UTC(),
		Data: raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

func OpportunityCreated(id int64) string {
	return Make(TypeOpportunityCreated, map[string]int64{"id": id})
}

func ReminderSent(id, opportunityID int64, channel string) string {
	return Make(TypeReminderSent, map[string]any{
		"id":            id,
		"opportunityId": opportunityID,
		"channel":       channel,
	})
}

func SyncDone(processed, matched, added int) string {
	return Make(TypeSyncDone, map[string]int{
		"processed": processed,
		"matched":   matched,
		"added":     added,
	})
}
