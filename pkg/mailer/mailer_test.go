package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vraj-isotiya/topcitylight/internal/mail/domain"
)

func TestNewDispatcherSelectsTransport(t *testing.T) {
	cases := []struct {
		provider domain.ProviderType
		wantSMTP bool
	}{
		{domain.ProviderGmail, true},
		{domain.ProviderPrivate, true},
		{domain.ProviderSendGrid, false},
		{domain.ProviderMailchimp, false},
	}
	for _, tc := range cases {
		d, err := NewDispatcher(&domain.EmailProviderSetting{ProviderType: tc.provider}, time.Second)
		require.NoError(t, err, "provider %s", tc.provider)
		_, isSMTP := d.(*SMTPDispatcher)
		assert.Equal(t, tc.wantSMTP, isSMTP, "provider %s", tc.provider)
	}
}

func TestNewDispatcherRejectsUnknownProvider(t *testing.T) {
	_, err := NewDispatcher(&domain.EmailProviderSetting{ProviderType: "carrier-pigeon"}, time.Second)
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestGenerateMessageID(t *testing.T) {
	id := generateMessageID("sales@example.com")
	assert.Regexp(t, regexp.MustCompile(`^<\d+\.\d+\.\d+@example\.com>$`), id)

	fallback := generateMessageID("not-an-address")
	assert.True(t, strings.HasSuffix(fallback, "@localhost>"))

	assert.NotEqual(t, generateMessageID("a@b.com"), generateMessageID("a@b.com"))
}

func TestBuildMIMEMessageHeaders(t *testing.T) {
	setting := &domain.EmailProviderSetting{
		FromEmail: "sales@example.com",
		FromName:  "Sales Team",
	}
	msg := OutboundMessage{
		To:        "alice@customer.com",
		ToName:    "Alice",
		Subject:   "Quarterly offer",
		Body:      "<p>Hello</p>",
		InReplyTo: "<earlier@example.com>",
	}

	raw := string(buildMIMEMessage(setting, msg, "<new@example.com>"))

	assert.Contains(t, raw, "From: Sales Team <sales@example.com>\r\n")
	assert.Contains(t, raw, "To: Alice <alice@customer.com>\r\n")
	assert.Contains(t, raw, "Subject: Quarterly offer\r\n")
	assert.Contains(t, raw, "Message-ID: <new@example.com>\r\n")
	assert.Contains(t, raw, "In-Reply-To: <earlier@example.com>\r\n")
	assert.Contains(t, raw, "References: <earlier@example.com>\r\n")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>Hello</p>\r\n"))
}

func TestBuildMIMEMessageWithoutReplyHeaders(t *testing.T) {
	setting := &domain.EmailProviderSetting{FromEmail: "sales@example.com"}
	raw := string(buildMIMEMessage(setting, OutboundMessage{To: "a@b.com", Subject: "Hi", Body: "x"}, "<id@example.com>"))

	assert.NotContains(t, raw, "In-Reply-To:")
	assert.NotContains(t, raw, "References:")
	assert.Contains(t, raw, "From: sales@example.com\r\n")
}

func TestAPIDispatcherSendGrid(t *testing.T) {
	var got map[string]any
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	setting := &domain.EmailProviderSetting{
		ProviderType: domain.ProviderSendGrid,
		APIKey:       "sg-key",
		FromEmail:    "sales@example.com",
		FromName:     "Sales",
	}
	d := NewAPIDispatcher(setting, 5*time.Second)
	d.endpoint = server.URL

	id, err := d.Send(context.Background(), OutboundMessage{
		To:        "alice@customer.com",
		Subject:   "Hello",
		Body:      "<p>Hi</p>",
		InReplyTo: "<parent@example.com>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer sg-key", auth)

	headers := got["headers"].(map[string]any)
	assert.Equal(t, id, headers["Message-ID"])
	assert.Equal(t, "<parent@example.com>", headers["In-Reply-To"])
	assert.Equal(t, "Hello", got["subject"])
}

func TestAPIDispatcherMailchimpPayload(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	setting := &domain.EmailProviderSetting{
		ProviderType: domain.ProviderMailchimp,
		APIKey:       "mc-key",
		FromEmail:    "sales@example.com",
	}
	d := NewAPIDispatcher(setting, 5*time.Second)
	d.endpoint = server.URL

	_, err := d.Send(context.Background(), OutboundMessage{To: "bob@customer.com", Subject: "Hi", Body: "x"})
	require.NoError(t, err)

	assert.Equal(t, "mc-key", got["key"])
	message := got["message"].(map[string]any)
	assert.Equal(t, "Hi", message["subject"])
}

func TestAPIDispatcherErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad api key"}]}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	setting := &domain.EmailProviderSetting{ProviderType: domain.ProviderSendGrid, FromEmail: "s@example.com"}
	d := NewAPIDispatcher(setting, 5*time.Second)
	d.endpoint = server.URL

	_, err := d.Send(context.Background(), OutboundMessage{To: "a@b.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad api key")

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, domain.ProviderSendGrid, sendErr.Provider)
}

func TestSMTPDispatcherWrapsDialFailure(t *testing.T) {
	setting := &domain.EmailProviderSetting{
		ProviderType: domain.ProviderGmail,
		SMTPHost:     "127.0.0.1",
		SMTPPort:     1, // nothing listens here
		FromEmail:    "s@example.com",
	}
	d := NewSMTPDispatcher(setting, 100*time.Millisecond)

	_, err := d.Send(context.Background(), OutboundMessage{To: "a@b.com"})
	require.Error(t, err)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, domain.ProviderGmail, sendErr.Provider)
}
