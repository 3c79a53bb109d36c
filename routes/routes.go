package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"pivabalance-api/handlers"
	"pivabalance-api/middleware"
	"pivabalance-api/services"
)

// SetupAuthRoutes sets up public authentication routes plus the 2FA
// management routes that require a valid token.
func SetupAuthRoutes(public, protected *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	auth := public.Group("/auth")
	auth.Use(middleware.AuthRateLimiter())
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	protected.POST("/auth/2fa/setup", authHandler.SetupTOTP)
	protected.POST("/auth/2fa/verify", authHandler.VerifyTOTP)
	protected.POST("/auth/2fa/disable", authHandler.DisableTOTP)
}

// SetupInvoiceRoutes sets up protected invoice routes.
func SetupInvoiceRoutes(rg *gin.RouterGroup, invoices *services.InvoiceService, ws *handlers.WSHandler) {
	h := handlers.NewInvoiceHandler(invoices, ws)

	rg.GET("/invoices", h.List)
	rg.POST("/invoices", h.Create)
	rg.GET("/invoices/:id", h.Get)
	rg.PUT("/invoices/:id", h.Update)
	rg.DELETE("/invoices/:id", h.Delete)
}

// SetupCostRoutes sets up protected cost routes.
func SetupCostRoutes(rg *gin.RouterGroup, costs *services.CostService, ws *handlers.WSHandler) {
	h := handlers.NewCostHandler(costs, ws)

	rg.GET("/costs", h.List)
	rg.POST("/costs", h.Create)
	rg.GET("/costs/:id", h.Get)
	rg.PUT("/costs/:id", h.Update)
	rg.DELETE("/costs/:id", h.Delete)
}

// SetupSettingsRoutes sets up protected tax settings and reference data
// routes.
func SetupSettingsRoutes(rg *gin.RouterGroup, settings *services.SettingsService, ws *handlers.WSHandler) {
	h := handlers.NewSettingsHandler(settings, ws)

	rg.GET("/settings", h.Get)
	rg.PUT("/settings", h.Update)
	rg.GET("/settings/irpef-brackets", h.GetIrpefBrackets)
	rg.GET("/settings/professional-funds", h.ListProfessionalFunds)
}

// SetupTaxRoutes sets up the tax estimate and dashboard routes.
func SetupTaxRoutes(rg *gin.RouterGroup, invoices *services.InvoiceService, costs *services.CostService, taxes *services.TaxCalculationService) {
	taxHandler := handlers.NewTaxHandler(taxes)
	dashboardHandler := handlers.NewDashboardHandler(invoices, costs, taxes)

	rg.GET("/taxes/summary", taxHandler.GetSummary)
	rg.GET("/dashboard/summary", dashboardHandler.GetSummary)
}

// SetupExportRoutes sets up the GDPR export route.
func SetupExportRoutes(rg *gin.RouterGroup, export *services.ExportService) {
	h := handlers.NewExportHandler(export)

	rg.GET("/gdpr/export", h.Download)
}

// SetupWSRoutes sets up the authenticated live-update WebSocket.
func SetupWSRoutes(rg *gin.RouterGroup, ws *handlers.WSHandler) {
	rg.GET("/ws/updates", func(c *gin.Context) {
		ws.Serve(c, middleware.UserID(c))
	})
}
