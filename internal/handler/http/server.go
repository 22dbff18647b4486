package http

import (
	"Shortly-Backend/internal/analytics"
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// Server wires the HTTP handlers and middleware together.
type Server struct {
	shortenHandler   *ShortenHandler
	redirectHandler  *RedirectHandler
	analyticsHandler *AnalyticsHandler
	healthHandler    *HealthHandler
	shortenLimiter   *ipRateLimiter
	redirectLimiter  *ipRateLimiter
	log              *zap.Logger
}

func NewServer(
	storage repository.Storage,
	shortener *service.ShortenerService,
	resolver *service.ResolverService,
	aggregator *analytics.Aggregator,
	recorder StatsSource,
	rateLimits *config.RateLimit,
	log *zap.Logger,
	baseURL string,
) *Server {
	return &Server{
		shortenHandler:   NewShortenHandler(shortener, log, baseURL),
		redirectHandler:  NewRedirectHandler(resolver, log),
		analyticsHandler: NewAnalyticsHandler(aggregator, log),
		healthHandler:    NewHealthHandler(storage, recorder, log),
		shortenLimiter:   newIPRateLimiter(rateLimits.ShortenPerMinute, log),
		redirectLimiter:  newIPRateLimiter(rateLimits.RedirectPerMinute, log),
		log:              log,
	}
}

// SetupRoutes registers all routes on a fresh mux.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.Health)

	mux.HandleFunc("/api/shorten", withCORS(s.shortenLimiter.Wrap(s.shortenHandler.Shorten)))
	mux.HandleFunc("/api/analytics/", withCORS(s.analyticsHandler.GetAnalytics))

	// Redirect catches everything else, so it must be registered last.
	mux.HandleFunc("/", s.redirectLimiter.Wrap(s.redirectHandler.HandleRedirect))

	return mux
}
