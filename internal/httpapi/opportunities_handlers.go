package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"placealert-engine/internal/store"
)

type OpportunitiesHandler struct {
	Store         *store.Store
	DefaultUserID int64
}

func (h OpportunitiesHandler) userID(r *http.Request) (int64, bool) {
	q := r.URL.Query().Get("user")
	if q == "" {
		return h.DefaultUserID, true
	}
	id, err := strconv.ParseInt(q, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h OpportunitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_user", "invalid user id")
		return
	}
	opps, err := h.Store.Opportunities(r.Context(), userID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if opps == nil {
		opps = []store.Opportunity{}
	}
	writeJSON(w, opps)
}

func (h OpportunitiesHandler) UpcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_user", "invalid user id")
		return
	}
	opps, err := h.Store.UpcomingDeadlines(r.Context(), userID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if opps == nil {
		opps = []store.Opportunity{}
	}
	writeJSON(w, opps)
}

func (h OpportunitiesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_user", "invalid user id")
		return
	}
	st, err := h.Store.UserStats(r.Context(), userID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}
	writeJSON(w, st)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatusByPath handles PATCH /opportunities/{id}/status.
func (h OpportunitiesHandler) UpdateStatusByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/opportunities/")
	idStr, tail, _ := strings.Cut(rest, "/")
	if tail != "status" {
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown resource")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid opportunity id")
		return
	}

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	if err := h.Store.UpdateOpportunityStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "opportunity not found")
			return
		}
		WriteError(w, r, http.StatusBadRequest, "update_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "id": id, "status": req.Status})
}
