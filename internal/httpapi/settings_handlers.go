package httpapi

import (
	"encoding/json"
	"net/http"

	"placealert-engine/internal/store"
)

type SettingsHandler struct {
	Store         *store.Store
	DefaultUserID int64
}

func (h SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.Settings(r.Context(), h.DefaultUserID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "settings_failed", err.Error())
		return
	}
	writeJSON(w, st)
}

type putSettingsReq struct {
	DefaultReminderDays int  `json:"defaultReminderDays"`
	EmailEnabled        bool `json:"emailEnabled"`
	BrowserEnabled      bool `json:"browserEnabled"`
}

func (h SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req putSettingsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if req.DefaultReminderDays < 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_settings", "defaultReminderDays must be >= 0")
		return
	}

	cur, err := h.Store.Settings(r.Context(), h.DefaultUserID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "settings_failed", err.Error())
		return
	}
	cur.UserID = h.DefaultUserID
	cur.DefaultReminderDays = req.DefaultReminderDays
	cur.EmailEnabled = req.EmailEnabled
	cur.BrowserEnabled = req.BrowserEnabled

	if err := h.Store.SaveSettings(r.Context(), cur); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}
	writeJSON(w, cur)
}
