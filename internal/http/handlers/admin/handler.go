package admin

import "github.com/confirmador/internal/provider"

// Handler serves the operator dashboard endpoints.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
