package service

import (
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/pkg/random"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrCollisionExhausted is returned when code generation failed to
	// find a free code within the retry budget. At 62^7 codes this is
	// astronomically unlikely, but it is handled, not ignored.
	ErrCollisionExhausted = errors.New("could not generate a unique code")

	// ErrInvalidAlias is returned for custom aliases that violate the
	// format constraint.
	ErrInvalidAlias = errors.New("invalid custom alias")
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// reservedAliases are path segments the HTTP layer owns; a link under
// one of these names would be unreachable.
var reservedAliases = map[string]bool{
	"admin":     true,
	"api":       true,
	"health":    true,
	"analytics": true,
	"shorten":   true,
}

// CreateRequest describes a new short link.
type CreateRequest struct {
	Destination  string
	TTL          *time.Duration
	CustomAlias  string
	DestinationB *string
	SplitPercent *float64
}

// ShortenerService creates short links, generating collision-checked
// codes or validating custom aliases.
type ShortenerService struct {
	storage repository.Storage
	config  *config.Shortener

	// newCode is swappable in tests to force collisions.
	newCode func(length int) (string, error)
}

func NewShortener(storage repository.Storage, cfg *config.Shortener) *ShortenerService {
	return &ShortenerService{
		storage: storage,
		config:  cfg,
		newCode: random.NewCode,
	}
}

// Shorten creates a new short link and returns it. A custom alias
// bypasses generation but goes through the same uniqueness check; a
// generated code is retried up to the configured attempt budget, with a
// uniqueness-constraint violation on insert counting as a collision.
func (s *ShortenerService) Shorten(ctx context.Context, req *CreateRequest) (*domain.ShortLink, error) {
	link := &domain.ShortLink{
		Destination:  req.Destination,
		DestinationB: req.DestinationB,
		SplitPercent: req.SplitPercent,
		CreatedAt:    time.Now().UTC(),
	}
	if req.TTL != nil {
		expiresAt := link.CreatedAt.Add(*req.TTL)
		link.ExpiresAt = &expiresAt
	}

	if req.CustomAlias != "" {
		if err := ValidateAlias(req.CustomAlias); err != nil {
			return nil, err
		}
		link.Code = req.CustomAlias
		link.CustomAlias = true
		if err := s.storage.SaveLink(ctx, link); err != nil {
			if errors.Is(err, repository.ErrCodeExists) {
				return nil, repository.ErrCodeExists
			}
			return nil, fmt.Errorf("failed to save link: %w", err)
		}
		return link, nil
	}

	maxAttempts := s.config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		code, err := s.newCode(s.config.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}

		exists, err := s.storage.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code existence: %w", err)
		}
		if exists {
			continue
		}

		link.Code = code
		err = s.storage.SaveLink(ctx, link)
		if err == nil {
			return link, nil
		}
		// Two generators may propose the same code concurrently; the
		// store's uniqueness constraint decides, and the loser retries.
		if errors.Is(err, repository.ErrCodeExists) {
			continue
		}
		return nil, fmt.Errorf("failed to save link: %w", err)
	}

	return nil, ErrCollisionExhausted
}

// ValidateAlias enforces the custom alias format: 3-20 characters,
// alphanumeric plus hyphen, not a reserved path segment.
func ValidateAlias(alias string) error {
	if len(alias) < 3 || len(alias) > 20 {
		return fmt.Errorf("%w: must be between 3 and 20 characters", ErrInvalidAlias)
	}
	if !aliasPattern.MatchString(alias) {
		return fmt.Errorf("%w: only alphanumeric characters and hyphens are allowed", ErrInvalidAlias)
	}
	if reservedAliases[strings.ToLower(alias)] {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidAlias, alias)
	}
	return nil
}
