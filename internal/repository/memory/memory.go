package memory

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"sync"
	"time"
)

// MemStorage is an in-memory Storage implementation used by tests and
// local development. It mirrors the transactional guarantees of the
// real store: SaveLink is atomic with the uniqueness check.
type MemStorage struct {
	mu      sync.RWMutex
	links   map[string]*domain.ShortLink
	clicks  map[string][]*domain.ClickEvent
	linkSeq int64
	evSeq   int64
}

func New() *MemStorage {
	return &MemStorage{
		links:  make(map[string]*domain.ShortLink),
		clicks: make(map[string][]*domain.ClickEvent),
	}
}

func (s *MemStorage) SaveLink(_ context.Context, link *domain.ShortLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.links[link.Code]; exists {
		return repository.ErrCodeExists
	}
	s.linkSeq++
	link.ID = s.linkSeq
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	stored := *link
	s.links[link.Code] = &stored
	return nil
}

func (s *MemStorage) GetLink(_ context.Context, code string) (*domain.ShortLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[code]
	if !ok {
		return nil, repository.ErrCodeNotFound
	}
	cp := *link
	return &cp, nil
}

func (s *MemStorage) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.links[code]
	return ok, nil
}

func (s *MemStorage) AppendClick(_ context.Context, click *domain.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[click.ShortLinkCode]; !ok {
		return repository.ErrCodeNotFound
	}
	s.evSeq++
	click.ID = s.evSeq
	cp := *click
	s.clicks[click.ShortLinkCode] = append(s.clicks[click.ShortLinkCode], &cp)
	return nil
}

func (s *MemStorage) ListClicks(_ context.Context, code string) ([]*domain.ClickEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.clicks[code]
	out := make([]*domain.ClickEvent, 0, len(events))
	for _, ev := range events {
		cp := *ev
		out = append(out, &cp)
	}
	return out, nil
}
