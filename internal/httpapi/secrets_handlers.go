package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"placealert-engine/internal/config"
	"placealert-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setMailPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetMailPassword(w http.ResponseWriter, r *http.Request) {
	var req setMailPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetMailPassword(cfg, req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "store_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
