package mail

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	html := `<html><head><style>p { color: red }</style></head>
<body><p>Apply by <b>December 15, 2026</b></p>
<script>alert("x")</script>
<a href="https://initech.com/careers/apply">Apply now</a>
<a href="mailto:hr@initech.com">Write us</a>
</body></html>`

	got := htmlToText(html)
	if !strings.Contains(got, "Apply by December 15, 2026") {
		t.Fatalf("text lost: %q", got)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "color") {
		t.Fatalf("script/style leaked into text: %q", got)
	}
	if !strings.Contains(got, "https://initech.com/careers/apply") {
		t.Fatalf("href not harvested: %q", got)
	}
	if strings.Contains(got, "mailto:") {
		t.Fatalf("non-http href harvested: %q", got)
	}
}

func TestHarvestLinksDedupes(t *testing.T) {
	t.Parallel()

	html := `<a href="https://a.example.com">one</a>
<a href="https://a.example.com">again</a>
<a href="https://b.example.com">two</a>
<a href="">empty</a>`

	got := harvestLinks(html)
	want := "https://a.example.com\nhttps://b.example.com"
	if got != want {
		t.Fatalf("harvestLinks = %q, want %q", got, want)
	}
}

func TestParseRFC822Plain(t *testing.T) {
	t.Parallel()

	raw := []byte("Message-Id: <m1@initech.com>\r\n" +
		"Subject: Internship opportunity\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Apply by December 15, 2026.\r\n")

	id, plain, html, subject := parseRFC822(raw, "fallback")
	if id != "<m1@initech.com>" {
		t.Fatalf("message id = %q", id)
	}
	if subject != "Internship opportunity" {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(plain, "December 15, 2026") || html != "" {
		t.Fatalf("plain = %q html = %q", plain, html)
	}
}

func TestParseRFC822Multipart(t *testing.T) {
	t.Parallel()

	raw := []byte("Message-Id: <m2@initech.com>\r\n" +
		"Subject: Opening\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUND\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Plain text deadline.\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>HTML deadline.</p>\r\n" +
		"--BOUND--\r\n")

	_, plain, html, _ := parseRFC822(raw, "")
	if !strings.Contains(plain, "Plain text deadline.") {
		t.Fatalf("plain = %q", plain)
	}
	if !strings.Contains(html, "<p>HTML deadline.</p>") {
		t.Fatalf("html = %q", html)
	}
}

func TestParseRFC822QuotedPrintable(t *testing.T) {
	t.Parallel()

	raw := []byte("Subject: Opening\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Apply by December 15=2C 2026.\r\n")

	_, plain, _, _ := parseRFC822(raw, "")
	if !strings.Contains(plain, "December 15, 2026") {
		t.Fatalf("quoted-printable not decoded: %q", plain)
	}
}

func TestParseRFC822Garbage(t *testing.T) {
	t.Parallel()

	id, plain, _, subject := parseRFC822([]byte("not an rfc822 message"), "fallback subject")
	if id != "" || subject != "fallback subject" {
		t.Fatalf("id = %q subject = %q", id, subject)
	}
	if plain != "not an rfc822 message" {
		t.Fatalf("plain = %q", plain)
	}
}

func TestDecodeRFC2047(t *testing.T) {
	t.Parallel()

	got := decodeRFC2047("=?UTF-8?B?UGxhY2VtZW50IGRyaXZl?=")
	if got != "Placement drive" {
		t.Fatalf("decoded = %q", got)
	}
	if got := decodeRFC2047("plain subject"); got != "plain subject" {
		t.Fatalf("plain pass-through = %q", got)
	}
}

func TestClip(t *testing.T) {
	t.Parallel()

	if got := clip("  hello  ", 100); got != "hello" {
		t.Fatalf("clip trims = %q", got)
	}
	if got := clip("abcdef", 3); got != "abc" {
		t.Fatalf("clip cuts = %q", got)
	}
	if got := clip("abc", 0); got != "abc" {
		t.Fatalf("clip max 0 = %q", got)
	}

	// A cap that lands mid-rune backs off to the previous boundary.
	s := "ab日本語" // 'a', 'b', then three 3-byte runes
	for max := 2; max <= len(s); max++ {
		got := clip(s, max)
		if !utf8.ValidString(got) {
			t.Fatalf("clip(%q, %d) = %q is not valid UTF-8", s, max, got)
		}
		if len(got) > max {
			t.Fatalf("clip(%q, %d) = %q exceeds the cap", s, max, got)
		}
	}
	if got := clip(s, 4); got != "ab" {
		t.Fatalf("clip mid-rune = %q, want %q", got, "ab")
	}
}
