package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mesob/internal/models"
)

// GetAllCategories lists every category with its station binding.
func (s *Server) GetAllCategories(c *gin.Context) {
	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(categories), "data": gin.H{"categories": categories}})
}

type categoryRequest struct {
	Name    models.LocalizedName      `json:"name"`
	Station models.PreparationStation `json:"station"`
}

func (r *categoryRequest) validate() string {
	if r.Name.EN == "" || r.Name.AM == "" {
		return "a category needs both English and Amharic names"
	}
	if !r.Station.IsValid() {
		return "a category must be assigned to a preparation station"
	}
	return ""
}

// CreateCategory registers a category and binds it to a station.
func (s *Server) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": msg})
		return
	}

	category := models.Category{Name: req.Name, Station: req.Station}
	if err := s.db.Create(&category).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"category": category}})
}

// UpdateCategory edits a category's names or station.
func (s *Server) UpdateCategory(c *gin.Context) {
	var category models.Category
	if err := s.db.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "No category found with that ID"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if req.Name.EN != "" {
		category.Name.EN = req.Name.EN
	}
	if req.Name.AM != "" {
		category.Name.AM = req.Name.AM
	}
	if req.Station != "" {
		if !req.Station.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unknown station " + string(req.Station)})
			return
		}
		category.Station = req.Station
	}

	if err := s.db.Save(&category).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"category": category}})
}

// DeleteCategory removes a category.
func (s *Server) DeleteCategory(c *gin.Context) {
	res := s.db.Where("id = ?", c.Param("id")).Delete(&models.Category{})
	if res.Error != nil {
		s.respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "No category found with that ID"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
