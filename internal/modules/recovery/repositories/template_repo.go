package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/oraclewa/oraclewa/internal/modules/recovery/models"
	"github.com/oraclewa/oraclewa/internal/template"
)

// TemplateRepo stores variant sets as JSONB rows and doubles as the
// database-backed template.VariantSetProvider.
type TemplateRepo interface {
	template.VariantSetProvider
	Upsert(clientSlug string, event string, variants []template.Variant) error
	GetByClient(clientSlug string) ([]models.TemplateRecord, error)
}

type templateRepo struct {
	db *gorm.DB
}

func NewTemplateRepo(db *gorm.DB) TemplateRepo {
	return &templateRepo{db: db}
}

// LoadVariantSets reads every template row into variant sets for the store.
// Rows whose JSON does not decode are surfaced as malformed sets so the
// store can log and skip them individually.
func (r *templateRepo) LoadVariantSets(ctx context.Context) ([]template.VariantSet, error) {
	var records []models.TemplateRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}

	sets := make([]template.VariantSet, 0, len(records))
	for _, rec := range records {
		var variants []template.Variant
		if err := json.Unmarshal(rec.Variants, &variants); err != nil {
			// An empty set fails validation downstream instead of
			// aborting the whole load.
			variants = nil
		}
		sets = append(sets, template.VariantSet{
			ClientID: rec.ClientSlug,
			Event:    template.EventType(rec.Event),
			Variants: variants,
		})
	}
	return sets, nil
}

func (r *templateRepo) Upsert(clientSlug string, event string, variants []template.Variant) error {
	set := template.VariantSet{
		ClientID: clientSlug,
		Event:    template.EventType(event),
		Variants: variants,
	}
	if err := set.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(variants)
	if err != nil {
		return fmt.Errorf("failed to marshal variants: %w", err)
	}

	var existing models.TemplateRecord
	err = r.db.Where("client_slug = ? AND event = ?", clientSlug, event).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(&models.TemplateRecord{
			ClientSlug: clientSlug,
			Event:      event,
			Variants:   raw,
		}).Error
	}
	if err != nil {
		return err
	}

	existing.Variants = raw
	return r.db.Save(&existing).Error
}

func (r *templateRepo) GetByClient(clientSlug string) ([]models.TemplateRecord, error) {
	var records []models.TemplateRecord
	err := r.db.Where("client_slug = ?", clientSlug).Find(&records).Error
	return records, err
}
