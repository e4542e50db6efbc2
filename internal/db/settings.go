package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSetting returns the stored value for key, or fallback when absent.
func GetSetting(conn *gorm.DB, key, fallback string) string {
	var setting Setting
	if err := conn.Where("key = ?", key).First(&setting).Error; err != nil {
		return fallback
	}
	return setting.Value
}

// SetSetting upserts a key/value pair.
func SetSetting(conn *gorm.DB, key, value string) error {
	if key == "" {
		return errors.New("setting key is required")
	}
	record := Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}
