package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"pivabalance-api/config"
	"pivabalance-api/handlers"
	"pivabalance-api/middleware"
	"pivabalance-api/routes"
	"pivabalance-api/services"
	"pivabalance-api/utils"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	go scheduleSessionPurge(db)

	wsHandler := handlers.NewWSHandler()

	invoiceService := services.NewInvoiceService(db)
	costService := services.NewCostService(db)
	settingsService := services.NewSettingsService(db)
	taxService := services.NewTaxCalculationService(invoiceService, costService, settingsService)
	exportService := services.NewExportService(db, invoiceService, costService, settingsService)

	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	corsConfig := cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.LogAPIRequest(c.Request.Method, c.Request.URL.Path,
			c.GetString(middleware.ContextUserID), c.Writer.Status(),
			time.Since(start).String())
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())

		routes.SetupAuthRoutes(v1, protected, db)
		routes.SetupInvoiceRoutes(protected, invoiceService, wsHandler)
		routes.SetupCostRoutes(protected, costService, wsHandler)
		routes.SetupSettingsRoutes(protected, settingsService, wsHandler)
		routes.SetupTaxRoutes(protected, invoiceService, costService, taxService)
		routes.SetupExportRoutes(protected, exportService)
		routes.SetupWSRoutes(protected, wsHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	utils.LogStartup("PIVABalance API", version, port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// scheduleSessionPurge removes expired refresh-token sessions once a day so
// the sessions table does not grow without bound.
func scheduleSessionPurge(db *sql.DB) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	purgeExpiredSessions(db)
	for range ticker.C {
		purgeExpiredSessions(db)
	}
}

func purgeExpiredSessions(db *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		log.Printf("❌ Session purge failed: %v", err)
		return
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		log.Printf("🧹 Purged %d expired sessions", rows)
	}
}
