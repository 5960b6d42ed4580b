package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Inbox message body cap. Matches the dashboard's expectation of short,
// classifiable text rather than full newsletters.
const maxBodyBytes = 5000

// Messages older than this are never considered.
const fetchCutoff = 3 * 30 * 24 * time.Hour

type IMAPConfig struct {
	Addr     string // host:port, 993 default applied by the caller
	Username string
	Password string
	Mailbox  string // "" means INBOX
}

// Fetcher pulls unread mail over IMAP. Each FetchUnread call opens a fresh
// connection; the engine syncs on the order of minutes, so connection reuse
// buys nothing and keeps no idle socket toward the provider.
type Fetcher struct {
	cfg IMAPConfig
}

func NewFetcher(cfg IMAPConfig) *Fetcher {
	return &Fetcher{cfg: cfg}
}

func (f *Fetcher) FetchUnread(ctx context.Context, limit int) ([]Message, error) {
	if f.cfg.Addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if f.cfg.Username == "" || f.cfg.Password == "" {
		return nil, errors.New("imap username/password is required")
	}
	if limit <= 0 {
		limit = 20
	}

	host := f.cfg.Addr
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}

	c, err := dialAndLogin(ctx, f.cfg, &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: host,
	})
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(c)

	mailbox := f.cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %q: %w", mailbox, err)
	}

	raw, err := fetchUnseen(ctx, c, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Message, 0, len(raw))
	processed := make([]imap.UID, 0, len(raw))
	for _, em := range raw {
		msg := decodeMessage(em)
		out = append(out, msg)
		processed = append(processed, em.uid)
	}

	if err := markSeen(c, processed); err != nil {
		return out, fmt.Errorf("mark seen: %w", err)
	}
	return out, nil
}

type rawMessage struct {
	uid     imap.UID
	subject string
	from    string
	date    time.Time
	rfc822  []byte
}

func dialAndLogin(ctx context.Context, cfg IMAPConfig, tlsCfg *tls.Config) (*imapclient.Client, error) {
	c, err := imapclient.DialTLS(cfg.Addr, &imapclient.Options{TLSConfig: tlsCfg})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

// fetchUnseen pulls up to max unseen messages (newest first) with Envelope +
// full raw RFC822 bytes. Uses BODY.PEEK[] so fetching alone never sets \Seen.
func fetchUnseen(ctx context.Context, c *imapclient.Client, max int) ([]rawMessage, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().Add(-fetchCutoff),
	}

	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]rawMessage, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var em rawMessage
		em.uid = buf.UID
		if buf.Envelope != nil {
			em.subject = buf.Envelope.Subject
			em.date = buf.Envelope.Date
			em.from = joinAddrs(buf.Envelope.From)
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			em.rfc822 = append([]byte(nil), b...)
		}
		out = append(out, em)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func markSeen(c *imapclient.Client, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	cmd := c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

func logoutAndClose(c *imapclient.Client) {
	if err := c.Logout().Wait(); err != nil {
		log.Printf("[mail] imap logout: %v", err)
	}
	_ = c.Close()
}

func joinAddrs(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := &addrs[i]
		addr := strings.TrimSpace(a.Addr())
		if addr == "" {
			addr = strings.TrimSpace(a.Name)
		}
		if addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}

// decodeMessage turns a raw IMAP fetch into a classifiable Message: RFC822
// parse, MIME text extraction, HTML flattening, body cap.
func decodeMessage(em rawMessage) Message {
	msgID, plain, htmlPart, subject := parseRFC822(em.rfc822, em.subject)

	body := plain
	if body == "" && htmlPart != "" {
		body = htmlToText(htmlPart)
	} else if htmlPart != "" {
		// Keep link targets visible to URL extraction even when the plain
		// part wins.
		if links := harvestLinks(htmlPart); links != "" {
			body = body + "\n" + links
		}
	}

	if msgID == "" {
		msgID = fmt.Sprintf("uid:%d", em.uid)
	}

	return Message{
		ID:         msgID,
		Subject:    decodeRFC2047(subject),
		From:       em.from,
		Body:       clip(body, maxBodyBytes),
		ReceivedAt: em.date,
	}
}
