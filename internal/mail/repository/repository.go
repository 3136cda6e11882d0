package repository

import (
	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"
)

// ThreadRepository is the persistence boundary for email threads and replies.
type ThreadRepository interface {
	CreateThread(thread *maildomain.EmailThread) error
	GetThreadByID(id string) (*maildomain.EmailThread, error)

	// FindThreadByMessageID looks a thread up by the Message-ID assigned when
	// the outbound email was dispatched. This is the reply-matching primitive:
	// the inbound In-Reply-To header is compared against it.
	FindThreadByMessageID(messageID string) (*maildomain.EmailThread, error)

	// AppendReply stores an inbound reply and flips the owning thread to
	// replied. Idempotent on the reply's MessageID: replaying an already-seen
	// message returns the existing row without a duplicate insert.
	AppendReply(reply *maildomain.EmailReply) (*maildomain.EmailReply, error)

	// ListThreadsForCustomer returns a customer's threads most-recent-first,
	// each with its replies in received order.
	ListThreadsForCustomer(customerID string) ([]*maildomain.EmailThread, error)

	// ListThreadsPaged returns threads most-recent-first across customers.
	// customerID is an optional filter; the returned count is the unpaged
	// total.
	ListThreadsPaged(customerID string, page, limit int) ([]*maildomain.EmailThread, int64, error)

	GetStats() (*maildomain.EmailStats, error)
}

// ProviderSettingRepository owns the mailbox configuration rows, including
// the last_uid sync watermark.
type ProviderSettingRepository interface {
	// GetActive returns the active provider setting, or nil when none is
	// configured.
	GetActive() (*maildomain.EmailProviderSetting, error)

	// AdvanceLastUID moves the watermark forward. The update is guarded so
	// last_uid can never regress, even under a racing duplicate pass.
	AdvanceLastUID(id string, uid uint32) error

	Create(setting *maildomain.EmailProviderSetting) error
	List() ([]*maildomain.EmailProviderSetting, error)
}
