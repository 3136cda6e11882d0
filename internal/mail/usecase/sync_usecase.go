package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"
	mailrepo "github.com/vraj-isotiya/topcitylight/internal/mail/repository"
)

type syncUsecase struct {
	threadRepo  mailrepo.ThreadRepository
	settingRepo mailrepo.ProviderSettingRepository
	fetcher     MessageFetcher
	clean       BodyCleaner
	syncTimeout time.Duration

	// group collapses concurrent sync triggers into one running pass; late
	// callers share its result instead of opening a second IMAP session.
	group singleflight.Group
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	threadRepo mailrepo.ThreadRepository,
	settingRepo mailrepo.ProviderSettingRepository,
	fetcher MessageFetcher,
	clean BodyCleaner,
	syncTimeout time.Duration,
) SyncUsecase {
	return &syncUsecase{
		threadRepo:  threadRepo,
		settingRepo: settingRepo,
		fetcher:     fetcher,
		clean:       clean,
		syncTimeout: syncTimeout,
	}
}

// SyncReplies runs one sync pass against the active mailbox. Failures come
// back as *domain.SyncError with a normalized code.
func (u *syncUsecase) SyncReplies(ctx context.Context) (*maildomain.SyncSummary, error) {
	result, err, shared := u.group.Do("sync", func() (interface{}, error) {
		return u.runPass(ctx)
	})
	if shared {
		log.Printf("[Sync] Joined an already-running sync pass")
	}
	if err != nil {
		return nil, maildomain.ClassifySyncError(err)
	}
	return result.(*maildomain.SyncSummary), nil
}

// runPass fetches everything above the watermark, matches replies to threads
// and advances last_uid. The watermark only moves after the whole batch is
// durable, so a mid-batch failure leaves it untouched and the next pass
// refetches; idempotent ingestion absorbs the overlap.
func (u *syncUsecase) runPass(ctx context.Context) (*maildomain.SyncSummary, error) {
	setting, err := u.settingRepo.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load provider setting: %w", err)
	}
	if setting == nil {
		return nil, maildomain.NewSyncError(maildomain.SyncNoActiveProvider, "no active email provider configured", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, u.syncTimeout)
	defer cancel()

	messages, err := u.fetcher.FetchNewMessages(ctx, setting, setting.LastUID)
	if err != nil {
		return nil, err
	}

	log.Printf("[Sync] Fetched %d message(s) above UID %d", len(messages), setting.LastUID)

	summary := &maildomain.SyncSummary{}
	maxUID := setting.LastUID

	for i := range messages {
		msg := &messages[i]
		if msg.UID > maxUID {
			maxUID = msg.UID
		}

		if msg.ParseErr != nil {
			log.Printf("[Sync] Skipping unparseable message (UID %d): %v", msg.UID, msg.ParseErr)
			summary.SkippedCount++
			continue
		}
		if msg.MessageID == "" {
			log.Printf("[Sync] Skipping message without Message-ID (UID %d)", msg.UID)
			summary.SkippedCount++
			continue
		}
		if msg.InReplyTo == "" {
			log.Printf("[Sync] Skipping non-reply message (UID %d)", msg.UID)
			summary.SkippedCount++
			continue
		}

		thread, err := u.threadRepo.FindThreadByMessageID(msg.InReplyTo)
		if err != nil {
			if errors.Is(err, maildomain.ErrThreadNotFound) {
				log.Printf("[Sync] No thread found for In-Reply-To %s (UID %d)", msg.InReplyTo, msg.UID)
				summary.SkippedCount++
				continue
			}
			return nil, fmt.Errorf("failed to match reply (UID %d): %w", msg.UID, err)
		}

		reply := &maildomain.EmailReply{
			ThreadID:    thread.ID,
			CustomerID:  thread.CustomerID,
			ReplyBody:   u.clean(msg.RawBody()),
			SenderEmail: msg.SenderEmail,
			MessageID:   msg.MessageID,
			InReplyTo:   msg.InReplyTo,
			ReceivedAt:  msg.ReceivedAt,
		}
		if _, err := u.threadRepo.AppendReply(reply); err != nil {
			return nil, fmt.Errorf("failed to save reply (UID %d): %w", msg.UID, err)
		}

		log.Printf("[Sync] Saved reply for thread %s (UID %d)", thread.ID, msg.UID)
		summary.ProcessedCount++
	}

	if maxUID > setting.LastUID {
		if err := u.settingRepo.AdvanceLastUID(setting.ID, maxUID); err != nil {
			return nil, fmt.Errorf("failed to advance sync watermark: %w", err)
		}
		log.Printf("[Sync] Advanced watermark %d -> %d", setting.LastUID, maxUID)
	}

	log.Printf("[Sync] Pass complete: %d processed, %d skipped", summary.ProcessedCount, summary.SkippedCount)
	return summary, nil
}
