package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pivabalance-api/middleware"
	"pivabalance-api/models"
	"pivabalance-api/services"
)

type SettingsHandler struct {
	Service *services.SettingsService
	WS      *WSHandler
}

func NewSettingsHandler(service *services.SettingsService, ws *WSHandler) *SettingsHandler {
	return &SettingsHandler{Service: service, WS: ws}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.Service.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.Service.Update(c.Request.Context(), userID, req)
	if errors.Is(err, services.ErrInvalidSettings) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	h.WS.NotifyUser(userID, "settings_changed")
	c.JSON(http.StatusOK, settings)
}

// GetIrpefBrackets exposes the bracket table used for a fiscal year, mainly
// so the frontend can render the marginal rate breakdown.
func (h *SettingsHandler) GetIrpefBrackets(c *gin.Context) {
	year := parseYearQuery(c)
	if year == 0 {
		year = time.Now().Year()
	}

	brackets, err := h.Service.GetIrpefBrackets(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No bracket table for requested year"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fiscal_year": year, "brackets": brackets})
}

func (h *SettingsHandler) ListProfessionalFunds(c *gin.Context) {
	funds, err := h.Service.ListProfessionalFunds(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load professional funds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"funds": funds})
}
