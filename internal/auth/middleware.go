package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"

	"mesob/internal/models"
)

const userContextKey = "currentUser"

// Middleware handles JWT authentication: it extracts the bearer token,
// verifies it and loads the acting user into the request context.
func Middleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in."})
			c.Abort()
			return
		}

		userID, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Invalid token. Please log in again."})
			c.Abort()
			return
		}

		var user models.User
		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "The user for this token no longer exists."})
			c.Abort()
			return
		}

		c.Set(userContextKey, &user)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is outside the given set.
// The response never reveals whether the target of the request exists.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "You are not logged in."})
			c.Abort()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"status": "fail", "message": "You do not have permission to perform this action."})
		c.Abort()
	}
}

// CurrentUser returns the authenticated user, or nil outside the
// middleware.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
