package service

import (
	"context"
	"strings"
	"testing"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/models"
	"github.com/confirmador/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTemplateTest(t *testing.T) *TemplateService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.MessageTemplate{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewTemplateService(repository.NewTemplateRepository(db))
}

func TestContentFallsBackToDefault(t *testing.T) {
	svc := setupTemplateTest(t)
	content := svc.Content(context.Background(), constants.TemplateConfirmation)
	if content == "" {
		t.Fatalf("expected built-in default content")
	}
	if !strings.Contains(content, "{{nome_cliente}}") {
		t.Fatalf("default confirmation template missing placeholder: %s", content)
	}
}

func TestEnsureDefaultsSeedsMissingOnly(t *testing.T) {
	svc := setupTemplateTest(t)
	ctx := context.Background()

	custom := &models.MessageTemplate{
		ID:      constants.TemplateConfirmed,
		Name:    "Pedido Confirmado",
		Content: "custom body",
	}
	if err := svc.Update(ctx, custom); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if err := svc.EnsureDefaults(ctx); err != nil {
		t.Fatalf("EnsureDefaults error: %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != len(models.DefaultTemplates()) {
		t.Fatalf("expected %d templates, got %d", len(models.DefaultTemplates()), len(list))
	}
	if got := svc.Content(ctx, constants.TemplateConfirmed); got != "custom body" {
		t.Fatalf("operator edit overwritten by seeding: %s", got)
	}
}

func TestUpdateOverridesContent(t *testing.T) {
	svc := setupTemplateTest(t)
	ctx := context.Background()

	if err := svc.Update(ctx, &models.MessageTemplate{
		ID:      constants.TemplateConfirmation,
		Name:    "Confirmación",
		Content: "Hola {nome_cliente}",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := svc.Content(ctx, constants.TemplateConfirmation); got != "Hola {nome_cliente}" {
		t.Fatalf("stored content not used: %s", got)
	}
}
