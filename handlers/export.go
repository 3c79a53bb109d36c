package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pivabalance-api/middleware"
	"pivabalance-api/services"
	"pivabalance-api/utils"
)

type ExportHandler struct {
	Service *services.ExportService
}

func NewExportHandler(service *services.ExportService) *ExportHandler {
	return &ExportHandler{Service: service}
}

// Download returns the GDPR data-portability export as a JSON attachment.
func (h *ExportHandler) Download(c *gin.Context) {
	userID := middleware.UserID(c)

	export, err := h.Service.Export(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build data export"})
		return
	}

	utils.SafeInfo("GDPR export generated for user %s", utils.MaskID(userID))

	filename := fmt.Sprintf("pivabalance-export-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.JSON(http.StatusOK, export)
}
