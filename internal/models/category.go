package models

import (
	"github.com/jinzhu/gorm"
)

// PreparationStation identifies the physical station that prepares a
// subset of an order's items.
type PreparationStation string

const (
	StationKitchen  PreparationStation = "Kitchen"
	StationJuiceBar PreparationStation = "JuiceBar"
)

// AllStations lists every preparation station known to the system.
var AllStations = []PreparationStation{StationKitchen, StationJuiceBar}

// IsValid reports whether s is a known preparation station.
func (s PreparationStation) IsValid() bool {
	for _, known := range AllStations {
		if s == known {
			return true
		}
	}
	return false
}

// LocalizedName holds the bilingual display name used across the menu.
type LocalizedName struct {
	EN string `json:"en"`
	AM string `json:"am"`
}

// Category groups menu items and binds them to the station that
// prepares them. The station of an ordered item is always derived
// from its menu item's category.
type Category struct {
	gorm.Model
	Name    LocalizedName      `gorm:"embedded;embedded_prefix:name_" json:"name"`
	Station PreparationStation `gorm:"not null" json:"station"`
}
