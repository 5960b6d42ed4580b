package httpapi

import "net/http"

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Sync
	sh := SyncHandler{
		SyncStatus:    d.SyncStatus,
		Hub:           d.Hub,
		DefaultUserID: d.DefaultUserID,
		RunSync:       d.RunSync,
	}
	mux.HandleFunc("/sync", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Run,
	}))
	mux.HandleFunc("/sync/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Status,
	}))

	// Opportunities
	oh := OpportunitiesHandler{Store: d.Store, DefaultUserID: d.DefaultUserID}
	mux.HandleFunc("/opportunities", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: oh.List,
	}))
	mux.HandleFunc("/opportunities/", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch: oh.UpdateStatusByPath, // expects /opportunities/{id}/status
	}))
	mux.HandleFunc("/deadlines", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: oh.UpcomingDeadlines,
	}))
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: oh.Stats,
	}))

	// Reminders + processing log
	rh := RemindersHandler{Store: d.Store, DefaultUserID: d.DefaultUserID}
	mux.HandleFunc("/reminders", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.List,
	}))
	mux.HandleFunc("/email-log", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.EmailLog,
	}))

	// Settings
	uh := SettingsHandler{Store: d.Store, DefaultUserID: d.DefaultUserID}
	mux.HandleFunc("/settings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: uh.Get,
		http.MethodPut: uh.Put,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sech := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/mail", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sech.SetMailPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
