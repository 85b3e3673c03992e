package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mesob/internal/models"
)

// GetAllMenuItems lists the menu with categories, variants and add-on
// associations expanded. The expansion set is fixed per read, never an
// implicit hook on the data layer.
func (s *Server) GetAllMenuItems(c *gin.Context) {
	var items []models.MenuItem
	err := s.db.
		Preload("Category").
		Preload("Variants").
		Preload("AvailableAddOns").
		Find(&items).Error
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(items), "data": gin.H{"menuItems": items}})
}

type menuItemRequest struct {
	Name            models.LocalizedName `json:"name"`
	CategoryID      uint                 `json:"categoryId"`
	Price           float64              `json:"price"`
	Variants        []variantRequest     `json:"variants"`
	ImageURL        string               `json:"imageUrl"`
	TrackInventory  bool                 `json:"trackInventory"`
	Stock           int                  `json:"stock"`
	LowStockAlert   int                  `json:"lowStockAlert"`
	IsAvailable     *bool                `json:"isAvailable"`
	AvailableAddOns []uint               `json:"availableAddOns"`
}

type variantRequest struct {
	Name  models.LocalizedName `json:"name"`
	Price float64              `json:"price"`
}

// CreateMenuItem registers a dish under a category. Either a base
// price or at least one variant is required.
func (s *Server) CreateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if req.Name.EN == "" || req.Name.AM == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "a menu item needs both English and Amharic names"})
		return
	}
	if req.Price <= 0 && len(req.Variants) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "a menu item needs a price or at least one variant"})
		return
	}

	var category models.Category
	if err := s.db.Where("id = ?", req.CategoryID).First(&category).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unknown category"})
		return
	}

	addOns, ok := s.lookupAddOns(c, req.AvailableAddOns)
	if !ok {
		return
	}

	item := models.MenuItem{
		Name:            req.Name,
		CategoryID:      category.ID,
		Price:           req.Price,
		ImageURL:        req.ImageURL,
		TrackInventory:  req.TrackInventory,
		Stock:           req.Stock,
		LowStockAlert:   req.LowStockAlert,
		IsAvailable:     true,
		AvailableAddOns: addOns,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	for _, v := range req.Variants {
		item.Variants = append(item.Variants, models.ItemVariant{Name: v.Name, Price: v.Price})
	}

	if err := s.db.Create(&item).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"menuItem": item}})
}

// UpdateMenuItem edits a dish. Orders placed before the edit keep
// their snapshots.
func (s *Server) UpdateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := s.db.Preload("Variants").Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "No menu item found with that ID"})
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if req.Name.EN != "" {
		item.Name.EN = req.Name.EN
	}
	if req.Name.AM != "" {
		item.Name.AM = req.Name.AM
	}
	if req.CategoryID != 0 {
		var category models.Category
		if err := s.db.Where("id = ?", req.CategoryID).First(&category).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unknown category"})
			return
		}
		item.CategoryID = category.ID
	}
	if req.Price > 0 {
		item.Price = req.Price
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	item.ImageURL = firstNonEmpty(req.ImageURL, item.ImageURL)
	item.TrackInventory = req.TrackInventory || item.TrackInventory
	if req.Stock != 0 {
		item.Stock = req.Stock
	}
	if req.LowStockAlert != 0 {
		item.LowStockAlert = req.LowStockAlert
	}

	if req.Variants != nil {
		if err := s.db.Where("menu_item_id = ?", item.ID).Delete(&models.ItemVariant{}).Error; err != nil {
			s.respondError(c, err)
			return
		}
		item.Variants = nil
		for _, v := range req.Variants {
			item.Variants = append(item.Variants, models.ItemVariant{MenuItemID: item.ID, Name: v.Name, Price: v.Price})
		}
	}

	if req.AvailableAddOns != nil {
		addOns, ok := s.lookupAddOns(c, req.AvailableAddOns)
		if !ok {
			return
		}
		if err := s.db.Model(&item).Association("AvailableAddOns").Replace(addOns).Error; err != nil {
			s.respondError(c, err)
			return
		}
	}

	if err := s.db.Save(&item).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"menuItem": item}})
}

// DeleteMenuItem removes a dish from the menu. Historical orders keep
// their snapshots of it.
func (s *Server) DeleteMenuItem(c *gin.Context) {
	res := s.db.Where("id = ?", c.Param("id")).Delete(&models.MenuItem{})
	if res.Error != nil {
		s.respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "No menu item found with that ID"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (s *Server) lookupAddOns(c *gin.Context, ids []uint) ([]models.AddOn, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	var addOns []models.AddOn
	if err := s.db.Where("id IN (?)", ids).Find(&addOns).Error; err != nil {
		s.respondError(c, err)
		return nil, false
	}
	if len(addOns) != len(ids) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "one or more add-ons do not exist"})
		return nil, false
	}
	return addOns, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
