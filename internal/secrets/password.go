package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"placealert-engine/internal/config"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "placealert"

// GetMailPassword resolves the mailbox app password: keychain first, config
// fallback for headless machines.
func GetMailPassword(cfg config.Config) (string, error) {
	account := MailKeyringAccount(cfg)
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	if pw := strings.TrimSpace(cfg.Mail.AppPassword); pw != "" {
		return pw, nil
	}

	return "", errors.New("mail password not found (set it via the keychain or mail.app_password)")
}

func SetMailPassword(cfg config.Config, password string) error {
	account := MailKeyringAccount(cfg)
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeleteMailPassword(cfg config.Config) error {
	account := MailKeyringAccount(cfg)
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

func MailKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"placealert:mail:%s@%s",
		cfg.Mail.Username,
		cfg.Mail.IMAPHost,
	)
}
