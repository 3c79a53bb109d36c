package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pivabalance-api/middleware"
	"pivabalance-api/services"
)

type TaxHandler struct {
	Service *services.TaxCalculationService
}

func NewTaxHandler(service *services.TaxCalculationService) *TaxHandler {
	return &TaxHandler{Service: service}
}

// GetSummary returns the yearly tax and contribution estimate. Defaults to
// the current fiscal year.
func (h *TaxHandler) GetSummary(c *gin.Context) {
	userID := middleware.UserID(c)
	year := parseYearQuery(c)
	if year == 0 {
		year = time.Now().Year()
	}

	summary, err := h.Service.ComputeSummary(c.Request.Context(), userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute tax summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
