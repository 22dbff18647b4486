package postgres

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage implements the Storage interface on PostgreSQL.
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// SaveLink inserts a new link. The unique index on code makes the
// check-then-insert race safe: a concurrent insert of the same code
// fails the constraint and is reported as ErrCodeExists, which the
// shortener treats as a collision and retries.
func (s *PostgresStorage) SaveLink(ctx context.Context, link *domain.ShortLink) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrCodeExists
		}
		s.log.Error("failed to save link", zap.String("code", link.Code), zap.Error(err))
		return fmt.Errorf("failed to save link: %w", err)
	}

	s.log.Info("saved new link", zap.String("code", link.Code))
	return nil
}

// GetLink returns the link for a code. Expired links are returned as-is;
// the resolver decides what expiry means and the aggregator relies on
// expired rows still being present.
func (s *PostgresStorage) GetLink(ctx context.Context, code string) (*domain.ShortLink, error) {
	var link domain.ShortLink

	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrCodeNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

func (s *PostgresStorage) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.ShortLink{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check code existence", zap.String("code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check code: %w", err)
	}

	return count > 0, nil
}

func (s *PostgresStorage) AppendClick(ctx context.Context, click *domain.ClickEvent) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		s.log.Error("failed to append click",
			zap.String("code", click.ShortLinkCode),
			zap.Error(err))
		return fmt.Errorf("failed to append click: %w", err)
	}

	s.log.Debug("click appended", zap.String("code", click.ShortLinkCode))
	return nil
}

func (s *PostgresStorage) ListClicks(ctx context.Context, code string) ([]*domain.ClickEvent, error) {
	var clicks []*domain.ClickEvent

	err := s.db.WithContext(ctx).
		Where("short_link_code = ?", code).
		Order("clicked_at ASC, id ASC").
		Find(&clicks).Error
	if err != nil {
		s.log.Error("failed to list clicks", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	return clicks, nil
}
