package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"pivabalance-api/middleware"
	"pivabalance-api/models"
	"pivabalance-api/services"
)

type CostHandler struct {
	Service *services.CostService
	WS      *WSHandler
}

func NewCostHandler(service *services.CostService, ws *WSHandler) *CostHandler {
	return &CostHandler{Service: service, WS: ws}
}

func (h *CostHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	year := parseYearQuery(c)

	costs, err := h.Service.List(c.Request.Context(), userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load costs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"costs": costs})
}

func (h *CostHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.CreateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cost, err := h.Service.Create(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cost"})
		return
	}

	h.WS.NotifyUser(userID, "costs_changed")
	c.JSON(http.StatusCreated, cost)
}

func (h *CostHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	cost, err := h.Service.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cost not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cost"})
		return
	}

	c.JSON(http.StatusOK, cost)
}

func (h *CostHandler) Update(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.UpdateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cost, err := h.Service.Update(c.Request.Context(), c.Param("id"), userID, req)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cost not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cost"})
		return
	}

	h.WS.NotifyUser(userID, "costs_changed")
	c.JSON(http.StatusOK, cost)
}

func (h *CostHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)

	err := h.Service.Delete(c.Request.Context(), c.Param("id"), userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cost not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cost"})
		return
	}

	h.WS.NotifyUser(userID, "costs_changed")
	c.JSON(http.StatusOK, gin.H{"message": "Cost deleted"})
}
