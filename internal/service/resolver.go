package service

import (
	"Shortly-Backend/internal/analytics"
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// ErrLinkExpired is returned when a code exists but is past its TTL.
// The link is not deleted; it stays available for analytics.
var ErrLinkExpired = errors.New("short link has expired")

// ClientContext carries the raw request metadata a resolution was made
// with. It is handed to the recorder untouched; enrichment happens off
// the hot path.
type ClientContext struct {
	IPAddress string
	UserAgent string
	Referer   string
}

// Resolution is the outcome of a successful resolve: where to send the
// client and which variant was served ("A"/"B", nil without a variant
// configuration).
type Resolution struct {
	Destination   string
	VariantServed *string
}

// ClickSink accepts click submissions without blocking. Submission
// failures are the sink's problem, never the resolver's.
type ClickSink interface {
	Submit(click *analytics.ClickData)
}

// ResolverService turns a short code into a destination, enforcing lazy
// expiry and A/B variant selection, and schedules click recording as a
// side effect it never waits for.
type ResolverService struct {
	storage repository.Storage
	sink    ClickSink
	log     *zap.Logger

	// draw returns a uniform value in [0,100). Swappable in tests.
	draw func() float64
}

func NewResolver(storage repository.Storage, sink ClickSink, log *zap.Logger) *ResolverService {
	return &ResolverService{
		storage: storage,
		sink:    sink,
		log:     log,
		draw:    func() float64 { return rand.Float64() * 100 },
	}
}

// Resolve looks up a code and picks the destination to redirect to.
// Each resolution of a variant-configured link makes an independent
// random draw; there is deliberately no sticky per-visitor assignment,
// matching the per-visit behavior of the original system.
func (s *ResolverService) Resolve(ctx context.Context, code string, client ClientContext) (*Resolution, error) {
	link, err := s.storage.GetLink(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, repository.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}

	now := time.Now().UTC()
	if link.Expired(now) {
		s.log.Debug("resolved expired link", zap.String("code", code))
		return nil, ErrLinkExpired
	}

	res := s.pickDestination(link)
	s.submitClick(link, res, client, now)
	return res, nil
}

func (s *ResolverService) pickDestination(link *domain.ShortLink) *Resolution {
	if !link.HasVariant() {
		return &Resolution{Destination: link.Destination}
	}

	variant := "B"
	destination := *link.DestinationB
	if s.draw() < *link.SplitPercent {
		variant = "A"
		destination = link.Destination
	}

	return &Resolution{
		Destination:   destination,
		VariantServed: &variant,
	}
}

// submitClick hands the click to the recorder and returns immediately.
// The redirect response must never wait on, or fail because of,
// analytics.
func (s *ResolverService) submitClick(link *domain.ShortLink, res *Resolution, client ClientContext, now time.Time) {
	if s.sink == nil {
		return
	}

	click := &analytics.ClickData{
		Code:          link.Code,
		VariantServed: res.VariantServed,
		ClientID:      analytics.ClientID(client.IPAddress),
		ClickedAt:     now,
	}
	if client.IPAddress != "" {
		click.IPAddress = &client.IPAddress
	}
	if client.UserAgent != "" {
		click.UserAgent = &client.UserAgent
	}
	if client.Referer != "" {
		click.Referer = &client.Referer
	}

	s.sink.Submit(click)
}
