package repository

import (
	"errors"
	"time"

	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// threadRepository implements ThreadRepository interface
type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new instance of threadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{
		db: db,
	}
}

func (r *threadRepository) CreateThread(thread *maildomain.EmailThread) error {
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}
	now := time.Now()
	if thread.SentAt.IsZero() {
		thread.SentAt = now
	}
	if thread.Status == "" {
		thread.Status = maildomain.ThreadStatusSent
	}
	thread.CreatedAt = now
	thread.UpdatedAt = now
	return r.db.Create(thread).Error
}

func (r *threadRepository) GetThreadByID(id string) (*maildomain.EmailThread, error) {
	var thread maildomain.EmailThread
	err := r.db.Where("id = ?", id).First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, maildomain.ErrThreadNotFound
		}
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) FindThreadByMessageID(messageID string) (*maildomain.EmailThread, error) {
	var thread maildomain.EmailThread
	err := r.db.Where("message_id = ?", messageID).First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, maildomain.ErrThreadNotFound
		}
		return nil, err
	}
	return &thread, nil
}

// AppendReply inserts the reply with ON CONFLICT (message_id) DO NOTHING and
// flips the thread status inside one transaction. When the message id was
// already ingested the existing row is returned untouched, so sync replays
// and duplicate triggers cannot double-insert or re-transition the thread.
func (r *threadRepository) AppendReply(reply *maildomain.EmailReply) (*maildomain.EmailReply, error) {
	if reply.ID == "" {
		reply.ID = uuid.New().String()
	}
	now := time.Now()
	if reply.ReceivedAt.IsZero() {
		reply.ReceivedAt = now
	}
	reply.CreatedAt = now
	reply.UpdatedAt = now

	var result *maildomain.EmailReply
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			DoNothing: true,
		}).Create(reply)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Already ingested; return the stored row.
			var existing maildomain.EmailReply
			if err := tx.Where("message_id = ?", reply.MessageID).First(&existing).Error; err != nil {
				return err
			}
			result = &existing
			return nil
		}

		result = reply
		return tx.Model(&maildomain.EmailThread{}).
			Where("id = ?", reply.ThreadID).
			Updates(map[string]interface{}{
				"status":     maildomain.ThreadStatusReplied,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *threadRepository) ListThreadsForCustomer(customerID string) ([]*maildomain.EmailThread, error) {
	var threads []*maildomain.EmailThread
	err := r.db.Where("customer_id = ?", customerID).
		Order("sent_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachReplies(threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (r *threadRepository) ListThreadsPaged(customerID string, page, limit int) ([]*maildomain.EmailThread, int64, error) {
	query := r.db.Model(&maildomain.EmailThread{})
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []*maildomain.EmailThread
	err := query.Order("sent_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&threads).Error
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachReplies(threads); err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

// attachReplies loads replies for the given threads in one query, ordered by
// received_at so conversation history renders chronologically.
func (r *threadRepository) attachReplies(threads []*maildomain.EmailThread) error {
	if len(threads) == 0 {
		return nil
	}

	ids := make([]string, 0, len(threads))
	byID := make(map[string]*maildomain.EmailThread, len(threads))
	for _, t := range threads {
		ids = append(ids, t.ID)
		byID[t.ID] = t
		t.Replies = []*maildomain.EmailReply{}
	}

	var replies []*maildomain.EmailReply
	err := r.db.Where("thread_id IN ?", ids).
		Order("received_at ASC").
		Find(&replies).Error
	if err != nil {
		return err
	}

	for _, reply := range replies {
		if t, ok := byID[reply.ThreadID]; ok {
			t.Replies = append(t.Replies, reply)
		}
	}
	return nil
}

func (r *threadRepository) GetStats() (*maildomain.EmailStats, error) {
	stats := &maildomain.EmailStats{}

	if err := r.db.Model(&maildomain.EmailThread{}).Count(&stats.TotalThreads).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&maildomain.EmailThread{}).
		Where("status IN ?", []string{maildomain.ThreadStatusSent, maildomain.ThreadStatusReplied}).
		Count(&stats.EmailsSentAllTime).Error; err != nil {
		return nil, err
	}

	monthStart := time.Now().UTC()
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	if err := r.db.Model(&maildomain.EmailThread{}).
		Where("status IN ? AND sent_at >= ?", []string{maildomain.ThreadStatusSent, maildomain.ThreadStatusReplied}, monthStart).
		Count(&stats.EmailsSentThisMonth).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&maildomain.EmailThread{}).
		Where("status = ?", maildomain.ThreadStatusReplied).
		Count(&stats.RepliedThreads).Error; err != nil {
		return nil, err
	}

	if stats.TotalThreads > 0 {
		stats.ReplyRate = int(float64(stats.RepliedThreads)/float64(stats.TotalThreads)*100 + 0.5)
	}
	return stats, nil
}
