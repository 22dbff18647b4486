package http

import (
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/service"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// RedirectHandler resolves short codes and issues redirects.
type RedirectHandler struct {
	resolver *service.ResolverService
	log      *zap.Logger
}

func NewRedirectHandler(resolver *service.ResolverService, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: resolver,
		log:      log,
	}
}

// HandleRedirect handles GET /{code}. Click recording is scheduled by
// the resolver and never delays the response.
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.URL.Path, "/")

	// System endpoints are registered on the mux explicitly and never
	// reach this handler; anything with a path separator cannot be a
	// code.
	if code == "" || strings.Contains(code, "/") {
		http.NotFound(w, r)
		return
	}

	client := service.ClientContext{
		IPAddress: extractIPAddress(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	}

	res, err := h.resolver.Resolve(r.Context(), code, client)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrCodeNotFound):
		h.log.Debug("code not found", zap.String("code", code))
		writeError(w, "Short URL not found", http.StatusNotFound)
		return
	case errors.Is(err, service.ErrLinkExpired):
		h.log.Debug("code expired", zap.String("code", code))
		writeError(w, "Short URL has expired", http.StatusGone)
		return
	default:
		h.log.Error("failed to resolve code", zap.String("code", code), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	variant := "-"
	if res.VariantServed != nil {
		variant = *res.VariantServed
	}
	h.log.Info("redirect",
		zap.String("code", code),
		zap.String("destination", res.Destination),
		zap.String("variant", variant),
		zap.String("ip", client.IPAddress),
	)

	http.Redirect(w, r, res.Destination, http.StatusTemporaryRedirect)
}
