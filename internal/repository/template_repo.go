package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phSch08/EvaP/internal/models"
)

// TemplateRepository handles persistence for email templates.
type TemplateRepository interface {
	GetByName(ctx context.Context, name string) (models.EmailTemplate, error)
	Save(ctx context.Context, template *models.EmailTemplate) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository instantiates a GORM-backed repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByName(ctx context.Context, name string) (models.EmailTemplate, error) {
	var template models.EmailTemplate
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&template).Error; err != nil {
		return models.EmailTemplate{}, err
	}

	return template, nil
}

func (r *templateRepository) Save(ctx context.Context, template *models.EmailTemplate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"subject", "body", "updated_at"}),
		}).
		Create(template).Error
}
