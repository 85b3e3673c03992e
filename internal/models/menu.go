package models

import (
	"fmt"

	"github.com/jinzhu/gorm"
)

// MenuItem represents a dish or drink offered on the menu.
type MenuItem struct {
	gorm.Model
	Name       LocalizedName `gorm:"embedded;embedded_prefix:name_" json:"name"`
	CategoryID uint          `gorm:"not null;index" json:"categoryId"`
	Category   *Category     `json:"category,omitempty"`

	// Default price, used when the item has no variants.
	Price    float64       `json:"price"`
	Variants []ItemVariant `gorm:"foreignkey:MenuItemID" json:"variants"`
	ImageURL string        `json:"imageUrl,omitempty"`

	// Inventory tracking.
	TrackInventory bool `json:"trackInventory"`
	Stock          int  `json:"stock"`
	LowStockAlert  int  `json:"lowStockAlert"`

	// Manual availability toggle ("86-ing" an item).
	IsAvailable bool `gorm:"default:true" json:"isAvailable"`

	AvailableAddOns []AddOn `gorm:"many2many:menu_item_add_ons" json:"availableAddOns"`
}

// ItemVariant is a sized or styled variant of a menu item (e.g. Small,
// Large) with its own price.
type ItemVariant struct {
	gorm.Model
	MenuItemID uint          `gorm:"not null;index" json:"menuItemId"`
	Name       LocalizedName `gorm:"embedded;embedded_prefix:name_" json:"name"`
	Price      float64       `gorm:"not null" json:"price"`
}

// PriceFor resolves the unit price for the given variant name. An empty
// variant name selects the base price; a variant name that does not
// exist on the item is an error.
func (mi *MenuItem) PriceFor(variantName string) (float64, error) {
	if variantName == "" {
		return mi.Price, nil
	}
	for _, v := range mi.Variants {
		if v.Name.EN == variantName {
			return v.Price, nil
		}
	}
	return 0, fmt.Errorf("menu item %q has no variant %q", mi.Name.EN, variantName)
}

// HasAddOn reports whether the add-on is associated with this item.
func (mi *MenuItem) HasAddOn(addOnID uint) bool {
	for _, a := range mi.AvailableAddOns {
		if a.ID == addOnID {
			return true
		}
	}
	return false
}
