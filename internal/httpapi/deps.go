package httpapi

import (
	"context"
	"sync/atomic"

	"placealert-engine/internal/config"
	"placealert-engine/internal/events"
	"placealert-engine/internal/store"
	"placealert-engine/internal/sync"
)

type Deps struct {
	Store *store.Store
	Hub   *events.Hub

	// CfgVal stores config.Config; SyncStatus stores httpapi.SyncStatus.
	CfgVal     *atomic.Value
	SyncStatus *atomic.Value

	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// DefaultUserID is the mailbox owner created at startup; requests without
	// an explicit user target it.
	DefaultUserID int64

	// RunSync is injected for testability.
	RunSync func(ctx context.Context, userID int64) (sync.Result, error)
}
