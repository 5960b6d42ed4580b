package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if cfg.User.Email == "" {
		errs = append(errs, "user.email is required")
	} else if _, err := mail.ParseAddress(cfg.User.Email); err != nil {
		errs = append(errs, "user.email is not a valid address")
	}
	if cfg.Mail.IMAPHost == "" {
		errs = append(errs, "mail.imap_host is required")
	}
	if cfg.Mail.Username == "" {
		errs = append(errs, "mail.username is required")
	}
	if cfg.Sync.IntervalMinutes < 0 {
		errs = append(errs, "sync.interval_minutes must be >= 0")
	}
	if cfg.Sync.MaxMessages < 0 {
		errs = append(errs, "sync.max_messages must be >= 0")
	}
	if cfg.Reminders.DispatchSeconds < 0 {
		errs = append(errs, "reminders.dispatch_seconds must be >= 0")
	}

	if len(errs) > 0 {
		msg := "invalid config:"
		for _, e := range errs {
			msg += "\n  - " + e
		}
		return errors.New(msg)
	}
	return nil
}

// ApplyDefaults fills unset knobs. Kept separate from Validate so saved
// configs stay sparse.
func ApplyDefaults(cfg *Config) {
	if cfg.Mail.IMAPPort == 0 {
		cfg.Mail.IMAPPort = 993
	}
	if cfg.Mail.SMTPPort == 0 {
		cfg.Mail.SMTPPort = 587
	}
	if cfg.Mail.SMTPHost == "" {
		cfg.Mail.SMTPHost = cfg.Mail.IMAPHost
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.User.Email
	}
	if cfg.Sync.IntervalMinutes == 0 {
		cfg.Sync.IntervalMinutes = 15
	}
	if cfg.Sync.MaxMessages == 0 {
		cfg.Sync.MaxMessages = 20
	}
	if cfg.Reminders.DispatchSeconds == 0 {
		cfg.Reminders.DispatchSeconds = 60
	}
}

// Save validates and atomically writes the config (temp file + rename).
func Save(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(path), ".config.yml.tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
