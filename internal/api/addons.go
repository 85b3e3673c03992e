package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mesob/internal/models"
)

// GetAllAddOns lists every add-on.
func (s *Server) GetAllAddOns(c *gin.Context) {
	var addOns []models.AddOn
	if err := s.db.Find(&addOns).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(addOns), "data": gin.H{"addOns": addOns}})
}

type addOnRequest struct {
	Name  models.LocalizedName `json:"name"`
	Price *float64             `json:"price"`
}

// CreateAddOn registers an add-on.
func (s *Server) CreateAddOn(c *gin.Context) {
	var req addOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if req.Name.EN == "" || req.Name.AM == "" || req.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "an add-on needs both names and a price"})
		return
	}

	addOn := models.AddOn{Name: req.Name, Price: *req.Price}
	if err := s.db.Create(&addOn).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"addOn": addOn}})
}

// UpdateAddOn edits an add-on's names or price. Orders placed before
// the edit keep their snapshotted name and price.
func (s *Server) UpdateAddOn(c *gin.Context) {
	var addOn models.AddOn
	if err := s.db.Where("id = ?", c.Param("id")).First(&addOn).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "No add-on found with that ID"})
		return
	}

	var req addOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if req.Name.EN != "" {
		addOn.Name.EN = req.Name.EN
	}
	if req.Name.AM != "" {
		addOn.Name.AM = req.Name.AM
	}
	if req.Price != nil {
		addOn.Price = *req.Price
	}

	if err := s.db.Save(&addOn).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"addOn": addOn}})
}

// DeleteAddOn removes an add-on.
func (s *Server) DeleteAddOn(c *gin.Context) {
	res := s.db.Where("id = ?", c.Param("id")).Delete(&models.AddOn{})
	if res.Error != nil {
		s.respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "No add-on found with that ID"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
