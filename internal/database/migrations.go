package database

import (
	"Shortly-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs automatic migrations for all domain models.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Order matters because of the foreign key from click events.
	models := []interface{}{
		&domain.ShortLink{},
		&domain.ClickEvent{},
	}

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
		log.Info("model migrated",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))
	}

	log.Info("database auto-migration completed")
	return nil
}
