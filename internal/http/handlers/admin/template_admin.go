package admin

import (
	"strings"

	"github.com/confirmador/internal/http/response"
	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/models"

	"github.com/gin-gonic/gin"
)

// ListTemplates returns every stored message template.
func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.TemplateService.List(c.Request.Context())
	if err != nil {
		logger.Errorw("admin_list_templates_failed", "error", err)
		response.Internal(c, "list failed")
		return
	}
	response.Success(c, templates)
}

type updateTemplateRequest struct {
	Name      string   `json:"name"`
	Content   string   `json:"content" binding:"required"`
	Variables []string `json:"variables"`
}

// UpdateTemplate upserts a template body. The id is one of the fixed
// template keys; unknown ids are accepted so operators can stage new ones.
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.BadRequest(c, "template id is required")
		return
	}
	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "content is required")
		return
	}

	tpl := &models.MessageTemplate{
		ID:        id,
		Name:      req.Name,
		Content:   req.Content,
		Variables: req.Variables,
	}
	if err := h.TemplateService.Update(c.Request.Context(), tpl); err != nil {
		logger.Errorw("admin_update_template_failed", "template_id", id, "error", err)
		response.Internal(c, "update failed")
		return
	}
	response.SuccessWithMsg(c, "template updated", tpl)
}
