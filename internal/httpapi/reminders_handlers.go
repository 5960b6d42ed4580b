package httpapi

import (
	"net/http"
	"strconv"

	"placealert-engine/internal/store"
)

type RemindersHandler struct {
	Store         *store.Store
	DefaultUserID int64
}

func (h RemindersHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := h.DefaultUserID
	if q := r.URL.Query().Get("user"); q != "" {
		id, err := strconv.ParseInt(q, 10, 64)
		if err != nil || id <= 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_user", "invalid user id")
			return
		}
		userID = id
	}
	rems, err := h.Store.Reminders(r.Context(), userID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if rems == nil {
		rems = []store.Reminder{}
	}
	writeJSON(w, rems)
}

func (h RemindersHandler) EmailLog(w http.ResponseWriter, r *http.Request) {
	userID := h.DefaultUserID
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	logs, err := h.Store.EmailLogs(r.Context(), userID, limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if logs == nil {
		logs = []store.EmailLog{}
	}
	writeJSON(w, logs)
}
