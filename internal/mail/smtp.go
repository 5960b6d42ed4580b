package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

type SMTPConfig struct {
	Addr     string // host:port; 465 means implicit TLS, anything else STARTTLS
	Username string
	Password string
	From     string // sender address on outgoing reminders
}

// Sender delivers plain-text mail over SMTP submission with SASL PLAIN.
type Sender struct {
	cfg SMTPConfig
}

func NewSender(cfg SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if s.cfg.Addr == "" || s.cfg.From == "" {
		return errors.New("smtp addr/from is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := composeMessage(s.cfg.From, to, subject, body)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	host := s.cfg.Addr
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}

	var c *smtp.Client
	if strings.HasSuffix(s.cfg.Addr, ":465") {
		c, err = smtp.DialTLS(s.cfg.Addr, tlsCfg)
	} else {
		c, err = smtp.DialStartTLS(s.cfg.Addr, tlsCfg)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer func() { _ = c.Close() }()

	if s.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.SendMail(s.cfg.From, []string{to}, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return c.Quit()
}

func composeMessage(from, to, subject, body string) ([]byte, error) {
	var buf bytes.Buffer

	var h gomail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*gomail.Address{{Address: from}})
	h.SetAddressList("To", []*gomail.Address{{Address: to}})
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	w, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
