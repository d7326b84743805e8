package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oraclewa/oraclewa/internal/modules/recovery/models"
)

type MessageLogRepo interface {
	Create(log *models.MessageLog) error
	MarkSent(id, provider, instance string) error
	MarkFailed(id, reason string) error
	Recent(limit int) ([]models.MessageLog, error)
	RecentByClient(clientID string, limit int) ([]models.MessageLog, error)
}

type messageLogRepo struct {
	db *gorm.DB
}

func NewMessageLogRepo(db *gorm.DB) MessageLogRepo {
	return &messageLogRepo{db: db}
}

func (r *messageLogRepo) Create(log *models.MessageLog) error {
	return r.db.Create(log).Error
}

func (r *messageLogRepo) MarkSent(id, provider, instance string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	now := time.Now()
	return r.db.Model(&models.MessageLog{}).Where("id = ?", uid).Updates(map[string]interface{}{
		"status":   models.MessageStatusSent,
		"provider": provider,
		"instance": instance,
		"sent_at":  &now,
	}).Error
}

func (r *messageLogRepo) MarkFailed(id, reason string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	return r.db.Model(&models.MessageLog{}).Where("id = ?", uid).Updates(map[string]interface{}{
		"status": models.MessageStatusFailed,
		"error":  reason,
	}).Error
}

func (r *messageLogRepo) Recent(limit int) ([]models.MessageLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.MessageLog
	err := r.db.Order("queued_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *messageLogRepo) RecentByClient(clientID string, limit int) ([]models.MessageLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.MessageLog
	err := r.db.Where("client_id = ?", clientID).Order("queued_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
