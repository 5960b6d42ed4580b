package httpapi

type SyncStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	Processed int    `json:"processed"`
	Matched   int    `json:"matched"`
	Added     int    `json:"added"`
	Running   bool   `json:"running"`
}
