package offline

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/dom/jobtracker/internal/api/respond"
)

// Handler sits in front of the web app. Requests the active worker
// intercepts are answered by it; everything else is proxied to the origin.
type Handler struct {
	registration *Registration
	proxy        *httputil.ReverseProxy
}

func NewHandler(registration *Registration, origin *url.URL) *Handler {
	proxy := httputil.NewSingleHostReverseProxy(origin)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Warn("upstream unavailable", "component", "offline.Handler", "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusServiceUnavailable, "Offline")
	}

	return &Handler{
		registration: registration,
		proxy:        proxy,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	worker := h.registration.Active()
	if worker == nil || !worker.Intercepts(r) {
		h.proxy.ServeHTTP(w, r)
		return
	}

	resp := worker.Fetch(r.Context(), r)
	if err := resp.Write(w); err != nil {
		slog.Debug("failed to write response", "component", "offline.Handler", "path", r.URL.Path, "error", err)
	}
}
