package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pivabalance-api/middleware"
	"pivabalance-api/models"
	"pivabalance-api/services"
	"pivabalance-api/utils"
)

type DashboardHandler struct {
	Invoices *services.InvoiceService
	Costs    *services.CostService
	Taxes    *services.TaxCalculationService
}

func NewDashboardHandler(invoices *services.InvoiceService, costs *services.CostService, taxes *services.TaxCalculationService) *DashboardHandler {
	return &DashboardHandler{Invoices: invoices, Costs: costs, Taxes: taxes}
}

// GetSummary aggregates the year at a glance: totals, the monthly series and
// the current tax estimate.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx := c.Request.Context()
	year := parseYearQuery(c)
	if year == 0 {
		year = time.Now().Year()
	}

	summary := models.DashboardSummary{FiscalYear: year}

	var err error
	if summary.Revenue, err = h.Invoices.SumPaidRevenue(ctx, userID, year); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load revenue"})
		return
	}
	if summary.UnpaidRevenue, err = h.Invoices.SumUnpaidRevenue(ctx, userID, year); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load revenue"})
		return
	}
	if summary.InvoiceCount, err = h.Invoices.Count(ctx, userID, year); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoices"})
		return
	}
	if summary.CostCount, err = h.Costs.Count(ctx, userID, year); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load costs"})
		return
	}

	monthlyRevenue, err := h.Invoices.MonthlyRevenue(ctx, userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load monthly revenue"})
		return
	}
	monthlyCosts, err := h.Costs.MonthlyCosts(ctx, userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load monthly costs"})
		return
	}

	summary.Monthly = make([]models.MonthlyTotal, 12)
	for month := 1; month <= 12; month++ {
		summary.Monthly[month-1] = models.MonthlyTotal{
			Month:   month,
			Revenue: monthlyRevenue[month],
			Costs:   monthlyCosts[month],
		}
		summary.Costs += monthlyCosts[month]
	}

	// The tax estimate is best-effort on the dashboard: a missing bracket
	// table must not blank the whole page.
	taxes, err := h.Taxes.ComputeSummary(ctx, userID, year)
	if err != nil {
		utils.SafeWarn("Dashboard tax estimate unavailable for user %s: %v", utils.MaskID(userID), err)
	} else {
		summary.EstimatedTaxes = taxes
	}

	c.JSON(http.StatusOK, summary)
}
