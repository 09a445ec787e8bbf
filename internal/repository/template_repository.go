package repository

import (
	"errors"

	"github.com/confirmador/internal/models"

	"gorm.io/gorm"
)

// TemplateRepository is the message template data access interface.
type TemplateRepository interface {
	GetByID(id string) (*models.MessageTemplate, error)
	List() ([]models.MessageTemplate, error)
	Upsert(tpl *models.MessageTemplate) error
}

// GormTemplateRepository is the GORM implementation.
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a template repository.
func NewTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// GetByID fetches a template by its fixed identifier.
func (r *GormTemplateRepository) GetByID(id string) (*models.MessageTemplate, error) {
	var tpl models.MessageTemplate
	if err := r.db.Where("id = ?", id).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

// List returns all templates.
func (r *GormTemplateRepository) List() ([]models.MessageTemplate, error) {
	var templates []models.MessageTemplate
	if err := r.db.Order("id ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Upsert creates or updates a template by id.
func (r *GormTemplateRepository) Upsert(tpl *models.MessageTemplate) error {
	existing, err := r.GetByID(tpl.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(tpl).Error
	}
	existing.Name = tpl.Name
	existing.Content = tpl.Content
	existing.Variables = tpl.Variables
	return r.db.Save(existing).Error
}
