package imap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vraj-isotiya/topcitylight/internal/mail/domain"
)

func TestFirstMessageID(t *testing.T) {
	assert.Equal(t, "<a@x.com>", firstMessageID("<a@x.com>"))
	assert.Equal(t, "<a@x.com>", firstMessageID("  <a@x.com> <b@x.com>  "))
	assert.Equal(t, "", firstMessageID(""))
	assert.Equal(t, "", firstMessageID("   "))
}

func TestReadBodyPartsMultipart(t *testing.T) {
	raw := "From: alice@customer.com\r\n" +
		"To: sales@example.com\r\n" +
		"Subject: Re: Offer\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"sep\"\r\n" +
		"\r\n" +
		"--sep\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		"plain version\r\n" +
		"--sep\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		"<p>html version</p>\r\n" +
		"--sep--\r\n"

	var out domain.InboundMessage
	require.NoError(t, readBodyParts(strings.NewReader(raw), &out))
	assert.Equal(t, "plain version", strings.TrimSpace(out.TextBody))
	assert.Equal(t, "<p>html version</p>", strings.TrimSpace(out.HTMLBody))
}

func TestReadBodyPartsPlainOnly(t *testing.T) {
	raw := "From: alice@customer.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"just text\r\n"

	var out domain.InboundMessage
	require.NoError(t, readBodyParts(strings.NewReader(raw), &out))
	assert.Equal(t, "just text", strings.TrimSpace(out.TextBody))
	assert.Empty(t, out.HTMLBody)
}

func TestReadBodyPartsMalformed(t *testing.T) {
	var out domain.InboundMessage
	err := readBodyParts(strings.NewReader("not a mime message"), &out)
	// A bare string still parses as a headerless message; the important part
	// is that a broken reader never panics and reports through the error.
	if err != nil {
		assert.Contains(t, err.Error(), "failed")
	}
}
