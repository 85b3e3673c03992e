package models

import (
	"github.com/jinzhu/gorm"
)

// AddOn is an optional extra a guest may attach to a menu item.
type AddOn struct {
	gorm.Model
	Name  LocalizedName `gorm:"embedded;embedded_prefix:name_" json:"name"`
	Price float64       `gorm:"not null" json:"price"`
}
