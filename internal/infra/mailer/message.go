package mailer

import (
	"fmt"
	"mime"
	"mime/multipart"
	"strings"
	"time"
)

// Message is a fully rendered digest email ready for transport.
// HTMLBody may be empty, in which case a plain-text-only message is built.
type Message struct {
	Subject   string
	From      string
	To        []string
	PlainBody string
	HTMLBody  string
}

// Build serializes the message into RFC 5322 wire format. Messages with an
// HTML body become multipart/alternative with the plain part first, so
// clients prefer the richer part per the MIME ordering convention.
func (m Message) Build() ([]byte, error) {
	if len(m.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}
	if m.From == "" {
		return nil, fmt.Errorf("message has no sender")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")

	if m.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(m.PlainBody)
		return []byte(b.String()), nil
	}

	mw := multipart.NewWriter(&b)
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	plainPart, err := mw.CreatePart(textHeader("text/plain"))
	if err != nil {
		return nil, fmt.Errorf("create plain part: %w", err)
	}
	if _, err := plainPart.Write([]byte(m.PlainBody)); err != nil {
		return nil, fmt.Errorf("write plain part: %w", err)
	}

	htmlPart, err := mw.CreatePart(textHeader("text/html"))
	if err != nil {
		return nil, fmt.Errorf("create html part: %w", err)
	}
	if _, err := htmlPart.Write([]byte(m.HTMLBody)); err != nil {
		return nil, fmt.Errorf("write html part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return []byte(b.String()), nil
}

func textHeader(contentType string) map[string][]string {
	return map[string][]string{
		"Content-Type": {contentType + "; charset=utf-8"},
	}
}
