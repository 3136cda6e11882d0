package domain

import "time"

// Thread status values. A thread is created as sent and flips to replied when
// the first matching inbound reply arrives; it never transitions back.
const (
	ThreadStatusSent    = "sent"
	ThreadStatusReplied = "replied"
)

// EmailThread is one outbound conversation root: the email we sent a customer,
// identified on the wire by its provider-assigned Message-ID.
type EmailThread struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	CustomerID string    `json:"customer_id" gorm:"index;not null"`
	Subject    string    `json:"subject" gorm:"not null"`
	Body       string    `json:"body"`
	SentBy     string    `json:"sent_by" gorm:"index"`
	MessageID  string    `json:"message_id" gorm:"uniqueIndex;not null"`
	Status     string    `json:"status" gorm:"not null;default:sent"`
	SentAt     time.Time `json:"sent_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Replies []*EmailReply `json:"replies,omitempty" gorm:"-"`
}

func (EmailThread) TableName() string {
	return "email_threads"
}

// EmailReply is one inbound message attributed to a thread. Rows are written
// only by the sync engine (or an outbound reply we sent ourselves) and are
// immutable afterwards. MessageID uniqueness makes ingestion idempotent.
type EmailReply struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	ThreadID    string    `json:"thread_id" gorm:"index;not null"`
	CustomerID  string    `json:"customer_id" gorm:"index;not null"`
	ReplyBody   string    `json:"reply_body"`
	SenderEmail string    `json:"sender_email"`
	MessageID   string    `json:"message_id" gorm:"uniqueIndex;not null"`
	InReplyTo   string    `json:"in_reply_to"`
	ReceivedAt  time.Time `json:"received_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (EmailReply) TableName() string {
	return "email_replies"
}

// EmailStats aggregates thread counters for the dashboard.
type EmailStats struct {
	TotalThreads        int64 `json:"total_threads"`
	EmailsSentAllTime   int64 `json:"emails_sent_all_time"`
	EmailsSentThisMonth int64 `json:"emails_sent_this_month"`
	RepliedThreads      int64 `json:"replied_threads"`
	ReplyRate           int   `json:"reply_rate"`
}
