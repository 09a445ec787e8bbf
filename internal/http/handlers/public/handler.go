package public

import "github.com/confirmador/internal/provider"

// Handler serves the integration-facing endpoints: the Shopify webhook, the
// messaging gateway feed and the sync trigger.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
