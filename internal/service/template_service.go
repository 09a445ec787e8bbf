package service

import (
	"context"
	"time"

	"github.com/confirmador/internal/cache"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/repository"
)

const templateCacheTTL = 10 * time.Minute

// TemplateService reads and writes the stored message templates, with a
// Redis read-through cache when one is configured.
type TemplateService struct {
	repo repository.TemplateRepository
}

func NewTemplateService(repo repository.TemplateRepository) *TemplateService {
	return &TemplateService{repo: repo}
}

func templateCacheKey(id string) string { return "template:" + id }

// Get returns a template by id, or nil when it does not exist.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.MessageTemplate, error) {
	if cache.Enabled() {
		var cached models.MessageTemplate
		if ok, _ := cache.GetJSON(ctx, templateCacheKey(id), &cached); ok {
			return &cached, nil
		}
	}
	tpl, err := s.repo.GetByID(id)
	if err != nil || tpl == nil {
		return tpl, err
	}
	if cache.Enabled() {
		_ = cache.SetJSON(ctx, templateCacheKey(id), tpl, templateCacheTTL)
	}
	return tpl, nil
}

// Content returns the template body, falling back to the built in default
// when the row is missing or the read fails.
func (s *TemplateService) Content(ctx context.Context, id string) string {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		logger.Warnw("template_read_failed", "template_id", id, "error", err)
	}
	if tpl != nil && tpl.Content != "" {
		return tpl.Content
	}
	return models.DefaultTemplateContent(id)
}

func (s *TemplateService) List(ctx context.Context) ([]models.MessageTemplate, error) {
	return s.repo.List()
}

// Update upserts a template and drops its cache entry.
func (s *TemplateService) Update(ctx context.Context, tpl *models.MessageTemplate) error {
	if err := s.repo.Upsert(tpl); err != nil {
		return err
	}
	if cache.Enabled() {
		_ = cache.Delete(ctx, templateCacheKey(tpl.ID))
	}
	return nil
}

// EnsureDefaults inserts any default template that is not stored yet. Existing
// rows are left untouched so operator edits survive restarts.
func (s *TemplateService) EnsureDefaults(ctx context.Context) error {
	for _, tpl := range models.DefaultTemplates() {
		existing, err := s.repo.GetByID(tpl.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		seed := tpl
		if err := s.repo.Upsert(&seed); err != nil {
			return err
		}
		logger.Infow("template_seeded", "template_id", tpl.ID)
	}
	return nil
}
