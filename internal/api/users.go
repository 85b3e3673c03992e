package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mesob/internal/auth"
	"mesob/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

// Login exchanges a username and 4-digit PIN for a JWT.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.PIN == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "Please provide username and PIN."})
		return
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil || !user.CheckPIN(req.PIN) {
		// Same answer for unknown user and wrong PIN.
		c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Incorrect username or PIN."})
		return
	}

	ttl := time.Duration(s.cfg.Auth.ExpirySeconds) * time.Second
	token, err := auth.SignToken(user.ID, s.cfg.Auth.JWTSecret, ttl)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "token": token, "data": gin.H{"user": user}})
}

// GetMe returns the authenticated user.
func (s *Server) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": auth.CurrentUser(c)}})
}

// GetAllUsers lists every staff account.
func (s *Server) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": len(users), "data": gin.H{"users": users}})
}

type userRequest struct {
	Name     string          `json:"name"`
	Username string          `json:"username"`
	PIN      string          `json:"pin"`
	Role     models.UserRole `json:"role"`
}

// CreateUser registers a staff account.
func (s *Server) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if req.Name == "" || req.Username == "" || len(req.PIN) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "name, username and a 4-digit PIN are required"})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleWaitress
	}
	if !req.Role.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unknown role " + string(req.Role)})
		return
	}

	user := models.User{Name: req.Name, Username: req.Username, Role: req.Role}
	if err := user.SetPIN(req.PIN); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": "username already taken"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"user": user}})
}

// UpdateUser edits name, role or PIN of a staff account.
func (s *Server) UpdateUser(c *gin.Context) {
	var user models.User
	if err := s.db.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "No user found with that ID"})
		return
	}

	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		if !req.Role.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unknown role " + string(req.Role)})
			return
		}
		user.Role = req.Role
	}
	if req.PIN != "" {
		if len(req.PIN) != 4 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "PIN must be 4 digits"})
			return
		}
		if err := user.SetPIN(req.PIN); err != nil {
			s.respondError(c, err)
			return
		}
	}

	if err := s.db.Save(&user).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": user}})
}

// DeleteUser removes a staff account.
func (s *Server) DeleteUser(c *gin.Context) {
	res := s.db.Where("id = ?", c.Param("id")).Delete(&models.User{})
	if res.Error != nil {
		s.respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": "No user found with that ID"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
