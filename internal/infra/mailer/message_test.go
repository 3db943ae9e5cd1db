package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Build_PlainOnly(t *testing.T) {
	msg := Message{
		Subject:   "Your News Digest",
		From:      "digest@example.com",
		To:        []string{"reader@example.com"},
		PlainBody: "1. First story\n",
	}

	raw, err := msg.Build()
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "From: digest@example.com\r\n")
	assert.Contains(t, s, "To: reader@example.com\r\n")
	assert.Contains(t, s, "Subject: Your News Digest\r\n")
	assert.Contains(t, s, "Content-Type: text/plain; charset=utf-8\r\n")
	assert.Contains(t, s, "1. First story")
	assert.NotContains(t, s, "multipart/alternative")
}

func TestMessage_Build_MultipartAlternative(t *testing.T) {
	msg := Message{
		Subject:   "Your News Digest",
		From:      "digest@example.com",
		To:        []string{"one@example.com", "two@example.com"},
		PlainBody: "plain body",
		HTMLBody:  "<html><body>html body</body></html>",
	}

	raw, err := msg.Build()
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "To: one@example.com, two@example.com\r\n")
	assert.Contains(t, s, "Content-Type: multipart/alternative; boundary=")

	// Plain part must come before the HTML part so clients prefer HTML.
	plainIdx := strings.Index(s, "plain body")
	htmlIdx := strings.Index(s, "html body")
	require.NotEqual(t, -1, plainIdx)
	require.NotEqual(t, -1, htmlIdx)
	assert.Less(t, plainIdx, htmlIdx)

	assert.Contains(t, s, "Content-Type: text/plain; charset=utf-8")
	assert.Contains(t, s, "Content-Type: text/html; charset=utf-8")
}

func TestMessage_Build_EncodesNonASCIISubject(t *testing.T) {
	msg := Message{
		Subject:   "ニュースダイジェスト",
		From:      "digest@example.com",
		To:        []string{"reader@example.com"},
		PlainBody: "body",
	}

	raw, err := msg.Build()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: =?utf-8?q?")
}

func TestMessage_Build_Invalid(t *testing.T) {
	t.Run("no recipients", func(t *testing.T) {
		msg := Message{Subject: "s", From: "digest@example.com", PlainBody: "b"}
		_, err := msg.Build()
		assert.Error(t, err)
	})

	t.Run("no sender", func(t *testing.T) {
		msg := Message{Subject: "s", To: []string{"reader@example.com"}, PlainBody: "b"}
		_, err := msg.Build()
		assert.Error(t, err)
	})
}
