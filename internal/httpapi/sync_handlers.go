package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"placealert-engine/internal/events"
	"placealert-engine/internal/sync"
)

type SyncHandler struct {
	SyncStatus    *atomic.Value // httpapi.SyncStatus
	Hub           *events.Hub
	DefaultUserID int64
	RunSync       func(ctx context.Context, userID int64) (sync.Result, error)
}

func (h SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.SyncStatus.Load().(SyncStatus)
	writeJSON(w, st)
}

// Run kicks off one inbox sync in the background. A sync already in flight is
// reported, not queued.
func (h SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	userID := h.DefaultUserID
	if q := r.URL.Query().Get("user"); q != "" {
		id, err := strconv.ParseInt(q, 10, 64)
		if err != nil || id <= 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_user", "invalid user id")
			return
		}
		userID = id
	}

	st := h.SyncStatus.Load().(SyncStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	h.SyncStatus.Store(SyncStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastOkAt:  st.LastOkAt,
	})

	go func() {
		res, err := h.RunSync(context.Background(), userID)

		now := time.Now().Format(time.RFC3339)
		next := h.SyncStatus.Load().(SyncStatus)
		next.Running = false
		next.LastRunAt = now
		next.Processed = res.Processed
		next.Matched = res.Matched
		next.Added = res.Added
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.SyncStatus.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}
