package repository

import (
	"errors"
	"time"

	maildomain "github.com/vraj-isotiya/topcitylight/internal/mail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// providerSettingRepository implements ProviderSettingRepository interface
type providerSettingRepository struct {
	db *gorm.DB
}

// NewProviderSettingRepository creates a new instance of providerSettingRepository
func NewProviderSettingRepository(db *gorm.DB) ProviderSettingRepository {
	return &providerSettingRepository{
		db: db,
	}
}

func (r *providerSettingRepository) GetActive() (*maildomain.EmailProviderSetting, error) {
	var setting maildomain.EmailProviderSetting
	err := r.db.Where("is_active = ?", true).
		Order("created_at DESC").
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// AdvanceLastUID persists the watermark. The last_uid < ? guard makes the
// update a no-op if a newer pass already committed a higher UID.
func (r *providerSettingRepository) AdvanceLastUID(id string, uid uint32) error {
	return r.db.Model(&maildomain.EmailProviderSetting{}).
		Where("id = ? AND last_uid < ?", id, uid).
		Updates(map[string]interface{}{
			"last_uid":   uid,
			"updated_at": time.Now(),
		}).Error
}

func (r *providerSettingRepository) Create(setting *maildomain.EmailProviderSetting) error {
	if setting.ID == "" {
		setting.ID = uuid.New().String()
	}
	now := time.Now()
	setting.CreatedAt = now
	setting.UpdatedAt = now
	return r.db.Create(setting).Error
}

func (r *providerSettingRepository) List() ([]*maildomain.EmailProviderSetting, error) {
	var settings []*maildomain.EmailProviderSetting
	err := r.db.Order("created_at DESC").Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}
