package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS invoices (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			fiscal_year INTEGER NOT NULL,
			number VARCHAR(50) NOT NULL,
			issue_date DATE NOT NULL,
			payment_date DATE,
			client_name VARCHAR(255) NOT NULL,
			client_vat TEXT,
			amount NUMERIC(12,2) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, fiscal_year, number)
		)`,

		`CREATE TABLE IF NOT EXISTS costs (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			description VARCHAR(255) NOT NULL,
			date DATE NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			deductible BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS tax_settings (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			tax_regime VARCHAR(20) NOT NULL DEFAULT 'forfettario',
			substitute_rate NUMERIC(5,2) NOT NULL DEFAULT 15,
			profitability_coefficient NUMERIC(5,2) NOT NULL DEFAULT 78,
			pension_system VARCHAR(30) NOT NULL DEFAULT 'inps',
			professional_fund VARCHAR(30),
			inps_rate_type VARCHAR(30) DEFAULT 'gestione_separata',
			manual_contribution_rate NUMERIC(5,2) DEFAULT 0,
			manual_minimum_contribution NUMERIC(12,2) DEFAULT 0,
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS irpef_brackets (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			fiscal_year INTEGER NOT NULL,
			lower_bound NUMERIC(12,2) NOT NULL,
			upper_bound NUMERIC(12,2),
			rate NUMERIC(5,2) NOT NULL,
			UNIQUE(fiscal_year, lower_bound)
		)`,

		`CREATE TABLE IF NOT EXISTS professional_funds (
			code VARCHAR(30) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			contribution_rate NUMERIC(5,2) NOT NULL,
			minimum_contribution NUMERIC(12,2) NOT NULL DEFAULT 0,
			fixed_annual_contribution NUMERIC(12,2) NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_invoices_user_year ON invoices(user_id, fiscal_year)`,
		`CREATE INDEX IF NOT EXISTS idx_costs_user_date ON costs(user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_irpef_brackets_year ON irpef_brackets(fiscal_year)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_refresh_token ON sessions(refresh_token)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return SeedReferenceTables(db)
}

// SeedReferenceTables inserts the IRPEF bracket tables and the common
// professional funds. Inserts are idempotent via ON CONFLICT DO NOTHING so
// restarts never duplicate rows.
func SeedReferenceTables(db *sql.DB) error {
	type bracketRow struct {
		year  int
		lower float64
		upper sql.NullFloat64
		rate  float64
	}

	upper := func(v float64) sql.NullFloat64 {
		return sql.NullFloat64{Float64: v, Valid: true}
	}
	unbounded := sql.NullFloat64{}

	brackets := []bracketRow{
		// 2022: four brackets
		{2022, 0, upper(15000), 23},
		{2022, 15000, upper(28000), 25},
		{2022, 28000, upper(50000), 35},
		{2022, 50000, unbounded, 43},
		{2023, 0, upper(15000), 23},
		{2023, 15000, upper(28000), 25},
		{2023, 28000, upper(50000), 35},
		{2023, 50000, unbounded, 43},
		// 2024 onward: three brackets
		{2024, 0, upper(28000), 23},
		{2024, 28000, upper(50000), 35},
		{2024, 50000, unbounded, 43},
		{2025, 0, upper(28000), 23},
		{2025, 28000, upper(50000), 35},
		{2025, 50000, unbounded, 43},
	}

	for _, b := range brackets {
		_, err := db.Exec(`
			INSERT INTO irpef_brackets (fiscal_year, lower_bound, upper_bound, rate)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (fiscal_year, lower_bound) DO NOTHING
		`, b.year, b.lower, b.upper, b.rate)
		if err != nil {
			return fmt.Errorf("failed to seed irpef_brackets: %w", err)
		}
	}

	funds := []struct {
		code    string
		name    string
		rate    float64
		minimum float64
		fixed   float64
	}{
		{"inarcassa", "Inarcassa (ingegneri e architetti)", 14.5, 2695, 805},
		{"cnpadc", "CNPADC (dottori commercialisti)", 12, 2685, 0},
		{"cassa_forense", "Cassa Forense (avvocati)", 15, 3175, 0},
		{"enpam", "ENPAM (medici e odontoiatri)", 19.5, 0, 0},
		{"enpap", "ENPAP (psicologi)", 10, 780, 0},
		{"epap", "EPAP (pluricategoriale)", 10, 480, 0},
	}

	for _, f := range funds {
		_, err := db.Exec(`
			INSERT INTO professional_funds (code, name, contribution_rate, minimum_contribution, fixed_annual_contribution)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (code) DO NOTHING
		`, f.code, f.name, f.rate, f.minimum, f.fixed)
		if err != nil {
			return fmt.Errorf("failed to seed professional_funds: %w", err)
		}
	}

	return nil
}
