package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mesob/internal/auth"
	"mesob/internal/models"
	"mesob/internal/orders"
)

// CreateOrder submits a new order for the authenticated waitress.
func (s *Server) CreateOrder(c *gin.Context) {
	var in orders.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	waitress := auth.CurrentUser(c)
	order, err := s.orders.CreateOrder(waitress.ID, in)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"order": order}})
}

type completeOrderRequest struct {
	OrderID       uint                 `json:"orderId"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// CompleteOrder marks an order paid. Safe to retry: a repeat against
// an already completed order succeeds without changing anything.
func (s *Server) CompleteOrder(c *gin.Context) {
	var req completeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	order, err := s.orders.Complete(req.OrderID, req.PaymentMethod)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"order": order}})
}

type voidOrderRequest struct {
	OrderID uint `json:"orderId"`
}

// VoidOrder cancels an order terminally.
func (s *Server) VoidOrder(c *gin.Context) {
	var req voidOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	order, err := s.orders.Void(req.OrderID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"order": order}})
}

// GetKdsOrders returns the display queue for one station, oldest first.
func (s *Server) GetKdsOrders(c *gin.Context) {
	station := models.PreparationStation(c.Param("station"))

	list, err := s.orders.StationQueue(station)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"orders": list}})
}

// GetMyOrders returns the calling waitress's active orders, newest
// first.
func (s *Server) GetMyOrders(c *gin.Context) {
	waitress := auth.CurrentUser(c)

	list, err := s.orders.MyActiveOrders(waitress.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"orders": list}})
}
