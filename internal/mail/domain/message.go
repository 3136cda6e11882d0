package domain

import "time"

// InboundMessage is one message fetched from the mailbox, parsed into the
// fields the reply matcher needs. Messages are always delivered to the
// processing loop in ascending UID order.
type InboundMessage struct {
	UID         uint32
	MessageID   string
	InReplyTo   string
	SenderEmail string
	Subject     string
	TextBody    string
	HTMLBody    string
	ReceivedAt  time.Time

	// ParseErr records a per-message parse failure. The message still counts
	// toward the watermark; it is skipped, not fatal to the batch.
	ParseErr error
}

// RawBody returns the body to clean, preferring HTML when present.
func (m *InboundMessage) RawBody() string {
	if m.HTMLBody != "" {
		return m.HTMLBody
	}
	return m.TextBody
}
