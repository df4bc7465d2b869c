package entities

import "github.com/exifnotes/logbook/internal/database/schema"

// Setting is a key/value row for database-level bookkeeping.
type Setting struct {
	Key   string `gorm:"column:setting_key;primaryKey"`
	Value string `gorm:"column:setting_value"`
}

func (Setting) TableName() string { return schema.TableSettings }
