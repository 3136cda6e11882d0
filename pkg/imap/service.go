// Package imap fetches inbound mailbox messages above a UID watermark. The
// fetch is read-only (BODY.PEEK) so polling never marks customer replies as
// seen.
package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/vraj-isotiya/topcitylight/internal/mail/domain"
)

// Service connects to an IMAP mailbox per poll. Connections are not pooled;
// one sync pass opens one session and logs out when done.
type Service struct {
	connectTimeout time.Duration
}

func NewService(connectTimeout time.Duration) *Service {
	return &Service{connectTimeout: connectTimeout}
}

// FetchNewMessages returns all INBOX messages with UID strictly greater than
// lastUID, sorted by ascending UID. Messages whose body cannot be parsed are
// still returned, with ParseErr set, so the caller can account for them.
func (s *Service) FetchNewMessages(ctx context.Context, setting *domain.EmailProviderSetting, lastUID uint32) ([]domain.InboundMessage, error) {
	addr := fmt.Sprintf("%s:%d", setting.IMAPHost, setting.IMAPPort)

	dialer := &net.Dialer{Timeout: s.connectTimeout}
	c, err := client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: setting.IMAPHost})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server %s: %w", addr, err)
	}
	defer c.Logout()

	if deadline, ok := ctx.Deadline(); ok {
		c.Timeout = time.Until(deadline)
	} else {
		c.Timeout = s.connectTimeout
	}

	if err := c.Login(setting.IMAPUsername, setting.IMAPPassword); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	// UID range lastUID+1:*. Servers answer a range past the highest UID with
	// the last message anyway, so results at or below the watermark are
	// dropped after the fetch.
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(lastUID+1, 0)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, imap.FetchInternalDate, section.FetchItem()}

	fetched := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, fetched)
	}()

	var messages []domain.InboundMessage
	for msg := range fetched {
		if msg.Uid <= lastUID {
			continue
		}
		messages = append(messages, buildInboundMessage(msg, section))
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("UID fetch failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].UID < messages[j].UID })
	return messages, nil
}

// buildInboundMessage maps one fetched message to the domain shape. Threading
// identifiers come from the envelope; the body section is parsed separately
// and a failure there only flags this message.
func buildInboundMessage(msg *imap.Message, section *imap.BodySectionName) domain.InboundMessage {
	out := domain.InboundMessage{
		UID:        msg.Uid,
		ReceivedAt: msg.InternalDate,
	}

	if env := msg.Envelope; env != nil {
		out.MessageID = strings.TrimSpace(env.MessageId)
		out.InReplyTo = firstMessageID(env.InReplyTo)
		out.Subject = env.Subject
		if len(env.From) > 0 {
			out.SenderEmail = env.From[0].Address()
		}
		if out.ReceivedAt.IsZero() {
			out.ReceivedAt = env.Date
		}
	}

	body := msg.GetBody(section)
	if body == nil {
		out.ParseErr = fmt.Errorf("no body section for UID %d", msg.Uid)
		return out
	}
	if err := readBodyParts(body, &out); err != nil {
		out.ParseErr = err
	}
	return out
}

func readBodyParts(body io.Reader, out *domain.InboundMessage) error {
	reader, err := mail.CreateReader(body)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read message part: %w", err)
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}

		content, err := io.ReadAll(part.Body)
		if err != nil {
			return fmt.Errorf("failed to read part body: %w", err)
		}
		switch contentType {
		case "text/plain":
			out.TextBody = string(content)
		case "text/html":
			out.HTMLBody = string(content)
		}
	}
	return nil
}

// firstMessageID extracts the first identifier from an In-Reply-To header,
// which may list several parent IDs.
func firstMessageID(header string) string {
	fields := strings.Fields(strings.TrimSpace(header))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
