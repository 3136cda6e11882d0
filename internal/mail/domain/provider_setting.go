package domain

import "time"

// ProviderType is the closed set of supported outbound providers. Gmail and
// private servers relay over SMTP; SendGrid and Mailchimp use their
// transactional HTTP APIs.
type ProviderType string

const (
	ProviderGmail     ProviderType = "gmail"
	ProviderSendGrid  ProviderType = "sendgrid"
	ProviderMailchimp ProviderType = "mailchimp"
	ProviderPrivate   ProviderType = "private"
)

// EmailProviderSetting is one configured mailbox/provider, including the
// last_uid sync watermark. Credentials are administrative configuration and
// are never hard-coded by the mail core.
type EmailProviderSetting struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	ProviderType ProviderType `json:"provider_type" gorm:"not null"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"-"`

	IMAPHost     string `json:"imap_host"`
	IMAPPort     int    `json:"imap_port"`
	IMAPUsername string `json:"imap_username"`
	IMAPPassword string `json:"-"`

	APIKey    string `json:"-"`
	FromEmail string `json:"from_email" gorm:"not null"`
	FromName  string `json:"from_name"`

	// LastUID is the highest mailbox UID already fully processed. It only
	// moves forward, and only after the whole fetched batch is durable.
	LastUID  uint32 `json:"last_uid" gorm:"not null;default:0"`
	IsActive bool   `json:"is_active" gorm:"index;not null;default:true"`

	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (EmailProviderSetting) TableName() string {
	return "email_provider_settings"
}

// UsesSMTP reports whether the provider relays outbound mail over SMTP rather
// than a transactional HTTP API.
func (t ProviderType) UsesSMTP() bool {
	switch t {
	case ProviderGmail, ProviderPrivate:
		return true
	case ProviderSendGrid, ProviderMailchimp:
		return false
	}
	return false
}

// Known reports whether t is one of the supported provider variants.
func (t ProviderType) Known() bool {
	switch t {
	case ProviderGmail, ProviderPrivate, ProviderSendGrid, ProviderMailchimp:
		return true
	}
	return false
}
