package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type routerOptions struct {
	trustProxy bool
}

type RouterOption func(*routerOptions)

// WithTrustedProxy makes the router take the client address from
// X-Forwarded-For, X-Real-IP or True-Client-IP. Without it the socket
// address is used, so callers cannot pick their own rate limit key.
func WithTrustedProxy(trust bool) RouterOption {
	return func(o *routerOptions) { o.trustProxy = trust }
}

// NewRouter builds the public API. Unknown paths and known paths with the
// wrong method both answer 404.
func NewRouter(h *Handler, log logging.Logger, opts ...RouterOption) http.Handler {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()

	if o.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(log.With("module", "http")))
	r.Use(Metrics)
	r.Use(Recover(log))
	r.Use(CORS)

	r.Post(common.ShareFolderPath, h.Publish)
	r.Get(common.ShareFolderPath+"/{id}", h.Fetch)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	return r
}
