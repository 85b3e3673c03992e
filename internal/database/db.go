package database

import (
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite" // SQLite driver

	"mesob/internal/models"
)

var DB *gorm.DB

// InitDB initializes the database connection
func InitDB(dbPath string) error {
	var err error
	DB, err = gorm.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return err
	}
	// SQLite serializes writers anyway; a single pooled connection
	// keeps concurrent transactions from tripping SQLITE_BUSY.
	DB.DB().SetMaxOpenConns(1)
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Migrate creates and updates all tables used by the order system.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.AddOn{},
		&models.MenuItem{},
		&models.ItemVariant{},
		&models.Order{},
		&models.OrderedItem{},
		&models.SelectedAddOn{},
		&models.StationStatus{},
		&models.Counter{},
	).Error
}

// Seed ensures essential data exists in the database
func Seed(db *gorm.DB) error {
	// Create a default owner account so the system is reachable on a
	// fresh install. The PIN must be changed on first login.
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		owner := models.User{
			Name:     "Owner",
			Username: "owner",
			Role:     models.RoleOwner,
		}
		if err := owner.SetPIN("0000"); err != nil {
			return err
		}
		if err := db.Create(&owner).Error; err != nil {
			return err
		}
	}
	return nil
}
