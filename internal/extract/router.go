package extract

import (
	"context"
	"fmt"
	"strings"
)

// Router dispatches each call to the backend registered for the model's prefix.
type Router struct {
	routes   []route
	fallback Backend
}

type route struct {
	prefix  string
	backend Backend
}

// NewRouter returns a Router that uses fallback for models no prefix claims.
// fallback may be nil.
func NewRouter(fallback Backend) *Router {
	return &Router{fallback: fallback}
}

// Handle registers b for models starting with prefix. Earlier registrations win.
func (r *Router) Handle(prefix string, b Backend) *Router {
	r.routes = append(r.routes, route{prefix: prefix, backend: b})
	return r
}

func (r *Router) Complete(ctx context.Context, model, prompt string) (string, error) {
	for _, rt := range r.routes {
		if strings.HasPrefix(model, rt.prefix) {
			return rt.backend.Complete(ctx, model, prompt)
		}
	}
	if r.fallback == nil {
		return "", &BackendError{
			Kind:    KindModelUnavailable,
			Model:   model,
			Message: fmt.Sprintf("no backend configured for model %q", model),
		}
	}
	return r.fallback.Complete(ctx, model, prompt)
}
