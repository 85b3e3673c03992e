package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResetKds bulk-clears every order still active on a station display
// and signals the displays. Owner only; this is destructive.
func (s *Server) ResetKds(c *gin.Context) {
	count, err := s.orders.ResetStationQueues()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Successfully deleted %d active orders.", count),
	})
}

// GetSalesByWaitress reports completed sales for a period
// (today, week or month).
func (s *Server) GetSalesByWaitress(c *gin.Context) {
	report, err := s.analytics.SalesByWaitress(c.DefaultQuery("period", "today"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": report})
}

// ResetSalesAnalytics deletes completed orders after a report cycle.
func (s *Server) ResetSalesAnalytics(c *gin.Context) {
	count, err := s.orders.PurgeCompleted()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Successfully reset sales data. Deleted %d completed orders.", count),
	})
}
