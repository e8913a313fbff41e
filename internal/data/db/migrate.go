package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/creatorai-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}
