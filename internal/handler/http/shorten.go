package http

import (
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ShortenHandler creates new short links.
type ShortenHandler struct {
	shortener *service.ShortenerService
	log       *zap.Logger
	baseURL   string
}

func NewShortenHandler(shortener *service.ShortenerService, log *zap.Logger, baseURL string) *ShortenHandler {
	return &ShortenHandler{
		shortener: shortener,
		log:       log,
		baseURL:   baseURL,
	}
}

// VariantConfig is the optional A/B section of a shorten request.
type VariantConfig struct {
	DestinationB string  `json:"destination_b"`
	SplitPercent float64 `json:"split_percent"`
}

// ShortenRequest is the body of POST /api/shorten.
type ShortenRequest struct {
	Destination string         `json:"destination"`
	TTLSeconds  *int64         `json:"ttl_seconds,omitempty"`
	CustomAlias string         `json:"custom_alias,omitempty"`
	Variant     *VariantConfig `json:"variant,omitempty"`
}

// ShortenResponse is the body of a successful creation.
type ShortenResponse struct {
	ShortURL  string     `json:"short_url"`
	ShortCode string     `json:"short_code"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Shorten handles POST /api/shorten.
func (h *ShortenHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid shorten request body", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	createReq, err := h.buildCreateRequest(&req)
	if err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	link, err := h.shortener.Shorten(r.Context(), createReq)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidAlias):
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, repository.ErrCodeExists):
		writeError(w, "Custom alias is already taken", http.StatusConflict)
		return
	case errors.Is(err, service.ErrCollisionExhausted):
		h.log.Error("code generation exhausted", zap.Error(err))
		writeError(w, "Could not allocate a short code", http.StatusInternalServerError)
		return
	default:
		h.log.Error("failed to create short link", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, ShortenResponse{
		ShortURL:  fmt.Sprintf("%s/%s", h.baseURL, link.Code),
		ShortCode: link.Code,
		CreatedAt: link.CreatedAt,
		ExpiresAt: link.ExpiresAt,
	})
}

func (h *ShortenHandler) buildCreateRequest(req *ShortenRequest) (*service.CreateRequest, error) {
	if err := validateDestination(req.Destination); err != nil {
		return nil, err
	}

	out := &service.CreateRequest{
		Destination: req.Destination,
		CustomAlias: req.CustomAlias,
	}

	if req.TTLSeconds != nil {
		if *req.TTLSeconds < 1 {
			return nil, fmt.Errorf("ttl_seconds must be at least 1")
		}
		ttl := time.Duration(*req.TTLSeconds) * time.Second
		out.TTL = &ttl
	}

	if req.Variant != nil {
		if err := validateDestination(req.Variant.DestinationB); err != nil {
			return nil, fmt.Errorf("variant: %w", err)
		}
		if req.Variant.SplitPercent < 0 || req.Variant.SplitPercent > 100 {
			return nil, fmt.Errorf("variant: split_percent must be between 0 and 100")
		}
		destB := req.Variant.DestinationB
		split := req.Variant.SplitPercent
		out.DestinationB = &destB
		out.SplitPercent = &split
	}

	return out, nil
}

func validateDestination(raw string) error {
	if raw == "" {
		return fmt.Errorf("destination is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("destination must be a valid http(s) URL")
	}
	return nil
}
