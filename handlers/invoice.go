package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pivabalance-api/middleware"
	"pivabalance-api/models"
	"pivabalance-api/services"
	"pivabalance-api/utils"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	WS      *WSHandler
}

func NewInvoiceHandler(service *services.InvoiceService, ws *WSHandler) *InvoiceHandler {
	return &InvoiceHandler{Service: service, WS: ws}
}

func (h *InvoiceHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	year := parseYearQuery(c)

	invoices, err := h.Service.List(c.Request.Context(), userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.Service.Create(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice"})
		return
	}

	utils.LogInvoiceAction("create", invoice.ID, userID)
	h.WS.NotifyUser(userID, "invoices_changed")
	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	invoice, err := h.Service.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoice"})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.Service.Update(c.Request.Context(), c.Param("id"), userID, req)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invoice"})
		return
	}

	utils.LogInvoiceAction("update", invoice.ID, userID)
	h.WS.NotifyUser(userID, "invoices_changed")
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	err := h.Service.Delete(c.Request.Context(), id, userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete invoice"})
		return
	}

	utils.LogInvoiceAction("delete", id, userID)
	h.WS.NotifyUser(userID, "invoices_changed")
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted"})
}

// parseYearQuery reads the optional ?year= filter; 0 means no filter.
func parseYearQuery(c *gin.Context) int {
	raw := c.Query("year")
	if raw == "" {
		return 0
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2100 {
		return 0
	}
	return year
}
