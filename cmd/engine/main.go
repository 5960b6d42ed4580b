package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"placealert-engine/internal/config"
	"placealert-engine/internal/events"
	"placealert-engine/internal/httpapi"
	"placealert-engine/internal/mail"
	"placealert-engine/internal/notify"
	"placealert-engine/internal/sched"
	"placealert-engine/internal/secrets"
	"placealert-engine/internal/store"
	syncsvc "placealert-engine/internal/sync"
)

func main() {
	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("PLACEALERT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir: the reminder scheduler assumes it is the only
	// writer of reminder state.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock %s: %v", lock.Path(), err)
	}
	if !locked {
		log.Fatalf("another engine instance already holds %s", lock.Path())
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable.
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.ApplyDefaults(&cfg)
		return cfg, config.Validate(cfg)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "placealert.db")
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	if err := store.Migrate(st.Pool); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	user, err := st.EnsureUser(ctx, cfg.User.Email, cfg.User.Name)
	if err != nil {
		log.Fatalf("ensure user: %v", err)
	}

	password, err := secrets.GetMailPassword(cfg)
	if err != nil {
		// Sync and reminder delivery will fail until one is set via
		// POST /api/secrets/mail; the API itself still works.
		log.Printf("[main] mail password unavailable: %v", err)
	}

	fetcher := mail.NewFetcher(mail.IMAPConfig{
		Addr:     fmt.Sprintf("%s:%d", cfg.Mail.IMAPHost, cfg.Mail.IMAPPort),
		Username: cfg.Mail.Username,
		Password: password,
		Mailbox:  cfg.Mail.Mailbox,
	})
	sender := mail.NewSender(mail.SMTPConfig{
		Addr:     fmt.Sprintf("%s:%d", cfg.Mail.SMTPHost, cfg.Mail.SMTPPort),
		Username: cfg.Mail.Username,
		Password: password,
		From:     cfg.Mail.From,
	})

	hub := events.NewHub()

	svc := syncsvc.New(st, fetcher, hub)
	if cfg.Sync.MaxMessages > 0 {
		svc.MaxMessages = cfg.Sync.MaxMessages
	}

	scheduler := sched.New(st, notify.NewEmailNotifier(sender), hub)
	if cfg.Reminders.DispatchSeconds > 0 {
		scheduler.Interval = time.Duration(cfg.Reminders.DispatchSeconds) * time.Second
	}
	go scheduler.Run(ctx)

	if cfg.Sync.Auto {
		go autoSync(ctx, svc, user.ID, time.Duration(cfg.Sync.IntervalMinutes)*time.Minute)
	}

	var syncStatus atomic.Value
	syncStatus.Store(httpapi.SyncStatus{})

	mux := httpapi.NewMux(httpapi.Deps{
		Store:         st,
		Hub:           hub,
		CfgVal:        &cfgVal,
		SyncStatus:    &syncStatus,
		UserCfgPath:   userCfgPath,
		LoadCfg:       loadCfg,
		DefaultUserID: user.ID,
		RunSync:       svc.Run,
	})
	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.Cors,
		httpapi.AccessLog,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[main] serve: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
}

// autoSync runs the inbox pipeline on a fixed cadence, starting with one
// immediate pass.
func autoSync(ctx context.Context, svc *syncsvc.Service, userID int64, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	run := func() {
		if _, err := svc.Run(ctx, userID); err != nil {
			log.Printf("[main] auto sync: %v", err)
		}
	}
	run()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
