// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks sensitive data in production
// ============================================================================
// Logging helpers that automatically mask personal and financial information
// when running in production: emails, amounts, UUIDs, Italian VAT numbers
// (partita IVA) and fiscal codes (codice fiscale).
// ============================================================================

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction decides whether sensitive data gets masked.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	// LogLevel filters logs (DEBUG, INFO, WARN, ERROR)
	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ============================================================================
// MASKING PATTERNS
// ============================================================================

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Amounts with a currency marker
	amountWithCurrencyRegex = regexp.MustCompile(`\b\d+([.,]\d{1,2})?\s*(€|EUR)\b`)

	// Italian partita IVA: 11 digits, optionally prefixed with IT
	partitaIVARegex = regexp.MustCompile(`\b(IT)?\d{11}\b`)

	// Italian codice fiscale: 16 chars, fixed letter/digit layout
	codiceFiscaleRegex = regexp.MustCompile(`\b[A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z]\b`)

	// Full UUIDs
	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// ============================================================================
// MASKING FUNCTIONS
// ============================================================================

// MaskString masks sensitive data in a string.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := input
	result = emailRegex.ReplaceAllString(result, "***@***.***")
	result = codiceFiscaleRegex.ReplaceAllString(result, "****CF****")
	result = partitaIVARegex.ReplaceAllString(result, "****PIVA****")
	result = amountWithCurrencyRegex.ReplaceAllString(result, "***€")
	result = uuidRegex.ReplaceAllStringFunc(result, func(id string) string {
		if len(id) > 8 {
			return id[:8] + "..."
		}
		return "***"
	})

	return result
}

// MaskAmount masks a monetary amount.
func MaskAmount(amount float64) string {
	if IsProduction {
		return "***"
	}
	return fmt.Sprintf("%.2f", amount)
}

// MaskID keeps the first 8 characters of an ID.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

// MaskEmail masks an email address.
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// ============================================================================
// SAFE LOGGING FUNCTIONS
// ============================================================================

// SafeLog logs a message with sensitive data masked.
func SafeLog(format string, args ...interface{}) {
	log.Print(MaskString(fmt.Sprintf(format, args...)))
}

// SafeDebug logs a debug message (only with LOG_LEVEL=DEBUG).
func SafeDebug(format string, args ...interface{}) {
	if LogLevel > LogLevelDebug {
		return
	}
	log.Printf("[DEBUG] %s", MaskString(fmt.Sprintf(format, args...)))
}

// SafeInfo logs an informational message.
func SafeInfo(format string, args ...interface{}) {
	if LogLevel > LogLevelInfo {
		return
	}
	log.Printf("[INFO] %s", MaskString(fmt.Sprintf(format, args...)))
}

// SafeWarn logs a warning.
func SafeWarn(format string, args ...interface{}) {
	if LogLevel > LogLevelWarn {
		return
	}
	log.Printf("[WARN] %s", MaskString(fmt.Sprintf(format, args...)))
}

// SafeError logs an error.
func SafeError(format string, args ...interface{}) {
	log.Printf("[ERROR] %s", MaskString(fmt.Sprintf(format, args...)))
}

// ============================================================================
// DOMAIN LOGGING HELPERS
// ============================================================================

// LogInvoiceAction logs an invoice mutation without exposing client data.
func LogInvoiceAction(action, invoiceID, userID string) {
	log.Printf("[Invoice] %s - Invoice: %s User: %s", action, MaskID(invoiceID), MaskID(userID))
}

// LogTaxCalculation logs a tax computation without exposing amounts.
func LogTaxCalculation(userID string, fiscalYear int, regime string) {
	log.Printf("[Tax] Computed summary - User: %s Year: %d Regime: %s", MaskID(userID), fiscalYear, regime)
}

// LogAuthAction logs an authentication event.
func LogAuthAction(action, email string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	log.Printf("[Auth] %s - Email: %s Status: %s", action, MaskEmail(email), status)
}

// LogAPIRequest logs an API request without sensitive path segments.
func LogAPIRequest(method, path, userID string, statusCode int, duration string) {
	maskedPath := path
	if IsProduction {
		maskedPath = uuidRegex.ReplaceAllStringFunc(path, func(id string) string {
			if len(id) > 8 {
				return id[:8] + "..."
			}
			return "***"
		})
	}
	log.Printf("[API] %s %s - User: %s Status: %d Duration: %s",
		method, maskedPath, MaskID(userID), statusCode, duration)
}

// LogWebSocket logs a WebSocket event.
func LogWebSocket(action, userID string) {
	log.Printf("[WS] %s - User: %s", action, MaskID(userID))
}

// ============================================================================
// UTILITIES
// ============================================================================

// GetEnvMode returns the current environment mode.
func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

// LogStartup logs application startup information.
func LogStartup(appName, version, port string) {
	log.Printf("🚀 %s v%s starting...", appName, version)
	log.Printf("   Mode: %s", GetEnvMode())
	log.Printf("   Port: %s", port)
	if IsProduction {
		log.Printf("   ⚠️  Production mode: Sensitive data will be masked in logs")
	}
}
