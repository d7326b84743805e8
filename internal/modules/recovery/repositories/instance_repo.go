package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/oraclewa/oraclewa/internal/modules/recovery/models"
)

type InstanceRepo interface {
	GetActive() ([]models.Instance, error)
	GetByName(name string) (*models.Instance, error)
	TouchHealthy(name string) error
}

type instanceRepo struct {
	db *gorm.DB
}

func NewInstanceRepo(db *gorm.DB) InstanceRepo {
	return &instanceRepo{db: db}
}

func (r *instanceRepo) GetActive() ([]models.Instance, error) {
	var instances []models.Instance
	err := r.db.Where("status = ?", "active").Find(&instances).Error
	return instances, err
}

func (r *instanceRepo) GetByName(name string) (*models.Instance, error) {
	var instance models.Instance
	err := r.db.Where("name = ?", name).First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *instanceRepo) TouchHealthy(name string) error {
	now := time.Now()
	return r.db.Model(&models.Instance{}).Where("name = ?", name).
		Update("last_healthy_at", &now).Error
}
