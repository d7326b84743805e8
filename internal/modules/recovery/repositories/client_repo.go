package repositories

import (
	"github.com/oraclewa/oraclewa/internal/modules/recovery/models"
	"gorm.io/gorm"
)

type ClientRepo interface {
	GetBySlug(slug string) (*models.Client, error)
	GetActive() ([]models.Client, error)
	Create(client *models.Client) error
}

type clientRepo struct {
	db *gorm.DB
}

func NewClientRepo(db *gorm.DB) ClientRepo {
	return &clientRepo{db: db}
}

func (r *clientRepo) GetBySlug(slug string) (*models.Client, error) {
	var client models.Client
	err := r.db.Where("slug = ?", slug).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) GetActive() ([]models.Client, error) {
	var clients []models.Client
	err := r.db.Where("status = ?", "active").Find(&clients).Error
	return clients, err
}

func (r *clientRepo) Create(client *models.Client) error {
	return r.db.Create(client).Error
}
