package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"

	"mesob/internal/analytics"
	"mesob/internal/auth"
	"mesob/internal/config"
	"mesob/internal/live"
	"mesob/internal/logger"
	"mesob/internal/models"
	"mesob/internal/orders"
)

// Server wires the HTTP surface: order operations, the live socket
// endpoint, staff/menu administration and reporting.
type Server struct {
	Router    *gin.Engine
	db        *gorm.DB
	orders    *orders.Service
	analytics *analytics.Service
	hub       *live.Hub
	cfg       *config.Config
	log       *logger.Logger
}

// NewServer builds the router with every route group mounted.
func NewServer(db *gorm.DB, ordersSvc *orders.Service, analyticsSvc *analytics.Service, hub *live.Hub, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		Router:    gin.Default(),
		db:        db,
		orders:    ordersSvc,
		analytics: analyticsSvc,
		hub:       hub,
		cfg:       cfg,
		log:       log,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Live connection endpoint; the connection identifies itself with
	// a join message after the upgrade.
	s.Router.GET("/ws", func(c *gin.Context) {
		live.ServeWS(s.hub, s.orders, c)
	})

	v1 := s.Router.Group("/api/v1")

	// Login is the only unauthenticated route.
	v1.POST("/users/login", s.Login)

	protected := v1.Group("")
	protected.Use(auth.Middleware(s.db, s.cfg.Auth.JWTSecret))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", s.GetMe)
			users.GET("", auth.RequireRoles(models.RoleOwner), s.GetAllUsers)
			users.POST("", auth.RequireRoles(models.RoleOwner), s.CreateUser)
			users.PATCH("/:id", auth.RequireRoles(models.RoleOwner), s.UpdateUser)
			users.DELETE("/:id", auth.RequireRoles(models.RoleOwner), s.DeleteUser)
		}

		ordersGroup := protected.Group("/orders")
		{
			ordersGroup.POST("", auth.RequireRoles(models.RoleWaitress), s.CreateOrder)
			ordersGroup.PATCH("/complete", auth.RequireRoles(models.RoleWaitress), s.CompleteOrder)
			ordersGroup.PATCH("/void", auth.RequireRoles(models.RoleOwner), s.VoidOrder)
			ordersGroup.GET("/my-orders", auth.RequireRoles(models.RoleWaitress), s.GetMyOrders)
			ordersGroup.GET("/kds/:station", auth.RequireRoles(models.RoleKitchen, models.RoleJuiceBar), s.GetKdsOrders)
		}

		categories := protected.Group("/categories")
		{
			categories.GET("", s.GetAllCategories)
			categories.POST("", auth.RequireRoles(models.RoleOwner), s.CreateCategory)
			categories.PATCH("/:id", auth.RequireRoles(models.RoleOwner), s.UpdateCategory)
			categories.DELETE("/:id", auth.RequireRoles(models.RoleOwner), s.DeleteCategory)
		}

		addons := protected.Group("/addons")
		{
			addons.GET("", s.GetAllAddOns)
			addons.POST("", auth.RequireRoles(models.RoleOwner), s.CreateAddOn)
			addons.PATCH("/:id", auth.RequireRoles(models.RoleOwner), s.UpdateAddOn)
			addons.DELETE("/:id", auth.RequireRoles(models.RoleOwner), s.DeleteAddOn)
		}

		menu := protected.Group("/menu")
		{
			menu.GET("", s.GetAllMenuItems)
			menu.POST("", auth.RequireRoles(models.RoleOwner), s.CreateMenuItem)
			menu.PATCH("/:id", auth.RequireRoles(models.RoleOwner), s.UpdateMenuItem)
			menu.DELETE("/:id", auth.RequireRoles(models.RoleOwner), s.DeleteMenuItem)
		}

		analyticsGroup := protected.Group("/analytics", auth.RequireRoles(models.RoleOwner))
		{
			analyticsGroup.GET("/sales", s.GetSalesByWaitress)
			analyticsGroup.DELETE("/sales", s.ResetSalesAnalytics)
		}

		system := protected.Group("/system", auth.RequireRoles(models.RoleOwner))
		{
			system.POST("/reset-kds", s.ResetKds)
		}
	}

	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "fail",
			"message": "Can't find " + c.Request.URL.Path + " on this server.",
		})
	})
}

// respondError maps the orders error taxonomy onto HTTP statuses, so
// clients can tell "fix your input" from "your view is stale".
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case orders.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
	case orders.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "message": err.Error()})
	case orders.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": err.Error()})
	default:
		s.log.Error("API", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
	}
}
