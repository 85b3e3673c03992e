package models

import (
	"github.com/jinzhu/gorm"
)

// Counter is a named singleton sequence record. The orderNumber
// counter backs order numbering; rows are created lazily and never
// deleted in normal operation.
type Counter struct {
	Name string `gorm:"primary_key" json:"name"`
	Seq  int    `gorm:"not null" json:"seq"`
}

// NextSequence atomically increments the named counter and returns the
// post-increment value. The row is created with seq 0 on first use, so
// the first call for a new name returns 1. The insert, increment and
// read happen inside one transaction; SQLite serializes the writers,
// so no two calls ever observe the same value. Numbers lost to failed
// order creations are never reissued.
func NextSequence(db *gorm.DB, name string) (int, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	if err := tx.Exec("INSERT OR IGNORE INTO counters (name, seq) VALUES (?, 0)", name).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Exec("UPDATE counters SET seq = seq + 1 WHERE name = ?", name).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	var counter Counter
	if err := tx.Where("name = ?", name).First(&counter).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
