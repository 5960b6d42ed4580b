package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	// User is the mailbox owner; a single-user engine creates this account
	// on first start.
	User struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
	} `yaml:"user"`

	Mail struct {
		IMAPHost string `yaml:"imap_host"`
		IMAPPort int    `yaml:"imap_port"`
		SMTPHost string `yaml:"smtp_host"`
		SMTPPort int    `yaml:"smtp_port"`
		Username string `yaml:"username"`
		Mailbox  string `yaml:"mailbox"`
		From     string `yaml:"from"`
		// AppPassword is a fallback for headless machines without a
		// keychain; prefer the keyring (POST /api/secrets/mail).
		AppPassword string `yaml:"app_password"`
	} `yaml:"mail"`

	Sync struct {
		Auto            bool `yaml:"auto"`
		IntervalMinutes int  `yaml:"interval_minutes"`
		MaxMessages     int  `yaml:"max_messages"`
	} `yaml:"sync"`

	Reminders struct {
		DispatchSeconds int `yaml:"dispatch_seconds"`
	} `yaml:"reminders"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
