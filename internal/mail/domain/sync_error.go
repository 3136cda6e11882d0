package domain

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Sentinel errors surfaced by the thread store.
var (
	ErrThreadNotFound = errors.New("email thread not found")
)

// SyncErrorCode is the stable taxonomy a sync pass reports to callers.
type SyncErrorCode string

const (
	SyncAuthFailed        SyncErrorCode = "AUTH_FAILED"
	SyncHostUnreachable   SyncErrorCode = "HOST_UNREACHABLE"
	SyncConnectionRefused SyncErrorCode = "CONNECTION_REFUSED"
	SyncTimeout           SyncErrorCode = "TIMEOUT"
	SyncTLSFailed         SyncErrorCode = "TLS_FAILED"
	SyncNoActiveProvider  SyncErrorCode = "NO_ACTIVE_PROVIDER"
	SyncUnknown           SyncErrorCode = "UNKNOWN_SYNC_ERROR"
)

// SyncError is the normalized failure of a sync pass. Err keeps the full
// underlying detail for logs; Message is safe to return to API callers.
type SyncError struct {
	Code    SyncErrorCode
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the next scheduled trigger may safely retry.
// Auth and TLS failures need operator attention first.
func (e *SyncError) Retryable() bool {
	switch e.Code {
	case SyncHostUnreachable, SyncConnectionRefused, SyncTimeout:
		return true
	}
	return false
}

// NewSyncError builds a SyncError for a known code.
func NewSyncError(code SyncErrorCode, message string, err error) *SyncError {
	return &SyncError{Code: code, Message: message, Err: err}
}

// ClassifySyncError maps an arbitrary failure from the mailbox session into
// the taxonomy. Already-classified errors pass through unchanged.
func ClassifySyncError(err error) *SyncError {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewSyncError(SyncTimeout, "mailbox connection timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewSyncError(SyncTimeout, "mailbox connection timed out", err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewSyncError(SyncHostUnreachable, "mailbox host not reachable", err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return NewSyncError(SyncConnectionRefused, "mailbox connection refused", err)
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return NewSyncError(SyncTLSFailed, "TLS negotiation failed", err)
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return NewSyncError(SyncTLSFailed, "TLS negotiation failed", err)
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return NewSyncError(SyncTLSFailed, "TLS negotiation failed", err)
	}

	// IMAP servers report auth rejections as tagged NO responses; go-imap
	// surfaces the response text, so fall back to matching it.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "AUTHENTICATIONFAILED"),
		strings.Contains(msg, "Invalid credentials"),
		strings.Contains(msg, "Authentication failed"):
		return NewSyncError(SyncAuthFailed, "mailbox rejected credentials", err)
	case strings.Contains(msg, "connection refused"):
		return NewSyncError(SyncConnectionRefused, "mailbox connection refused", err)
	case strings.Contains(msg, "tls:"), strings.Contains(msg, "TLS"):
		return NewSyncError(SyncTLSFailed, "TLS negotiation failed", err)
	}

	return NewSyncError(SyncUnknown, "unknown error occurred during sync", err)
}

// SyncSummary is the successful outcome of one sync pass.
type SyncSummary struct {
	ProcessedCount int `json:"processed_count"`
	SkippedCount   int `json:"skipped_count"`
}
