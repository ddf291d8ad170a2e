package db

import (
	"gorm.io/gorm"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.OrderSnapshotRecord{},
		&domain.UploadIntentRecord{},
	)
}
