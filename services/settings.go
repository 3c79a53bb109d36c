package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pivabalance-api/models"
	"pivabalance-api/taxcalc"
	"pivabalance-api/utils"
)

// Validation errors surfaced to the handler layer as 400s.
var ErrInvalidSettings = errors.New("invalid tax settings")

type SettingsService struct {
	db *sql.DB
}

func NewSettingsService(db *sql.DB) *SettingsService {
	return &SettingsService{db: db}
}

// DefaultSettings is the profile a new user starts from: forfettario at the
// standard 15% substitute rate, 78% coefficient (professional services),
// gestione separata.
func DefaultSettings(userID string) models.TaxSettings {
	return models.TaxSettings{
		UserID:                   userID,
		TaxRegime:                models.RegimeForfettario,
		SubstituteRate:           15,
		ProfitabilityCoefficient: 78,
		PensionSystem:            models.PensionINPS,
		INPSRateType:             models.INPSGestioneSeparata,
		UpdatedAt:                time.Now(),
	}
}

// EnsureDefaults inserts the default settings row for a new user. Intended to
// run inside the signup transaction.
func EnsureDefaults(tx *sql.Tx, userID string) error {
	s := DefaultSettings(userID)
	_, err := tx.Exec(`
		INSERT INTO tax_settings (user_id, tax_regime, substitute_rate, profitability_coefficient, pension_system, inps_rate_type, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING
	`, s.UserID, s.TaxRegime, s.SubstituteRate, s.ProfitabilityCoefficient,
		s.PensionSystem, s.INPSRateType, s.UpdatedAt)
	return err
}

// Get loads the user's tax settings, falling back to defaults when the row is
// missing (users created before settings existed).
func (s *SettingsService) Get(ctx context.Context, userID string) (*models.TaxSettings, error) {
	var settings models.TaxSettings
	var fund, rateType sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, tax_regime, substitute_rate, profitability_coefficient, pension_system,
		       professional_fund, inps_rate_type, manual_contribution_rate, manual_minimum_contribution, updated_at
		FROM tax_settings
		WHERE user_id = $1
	`, userID).Scan(&settings.UserID, &settings.TaxRegime, &settings.SubstituteRate,
		&settings.ProfitabilityCoefficient, &settings.PensionSystem, &fund, &rateType,
		&settings.ManualContributionRate, &settings.ManualMinimumContribution, &settings.UpdatedAt)

	if err == sql.ErrNoRows {
		defaults := DefaultSettings(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}

	settings.ProfessionalFund = fund.String
	settings.INPSRateType = rateType.String
	return &settings, nil
}

// Update applies the non-nil fields of req, validates the combined result and
// upserts it.
func (s *SettingsService) Update(ctx context.Context, userID string, req models.UpdateSettingsRequest) (*models.TaxSettings, error) {
	settings, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.TaxRegime != nil {
		settings.TaxRegime = *req.TaxRegime
	}
	if req.SubstituteRate != nil {
		settings.SubstituteRate = *req.SubstituteRate
	}
	if req.ProfitabilityCoefficient != nil {
		settings.ProfitabilityCoefficient = *req.ProfitabilityCoefficient
	}
	if req.PensionSystem != nil {
		settings.PensionSystem = *req.PensionSystem
	}
	if req.ProfessionalFund != nil {
		settings.ProfessionalFund = *req.ProfessionalFund
	}
	if req.INPSRateType != nil {
		settings.INPSRateType = *req.INPSRateType
	}
	if req.ManualContributionRate != nil {
		settings.ManualContributionRate = *req.ManualContributionRate
	}
	if req.ManualMinimumContribution != nil {
		settings.ManualMinimumContribution = *req.ManualMinimumContribution
	}
	settings.UpdatedAt = time.Now()

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	if settings.PensionSystem == models.PensionProfessionalFund {
		if _, err := s.GetProfessionalFund(ctx, settings.ProfessionalFund); err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("%w: unknown professional fund %q", ErrInvalidSettings, settings.ProfessionalFund)
			}
			return nil, err
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tax_settings (user_id, tax_regime, substitute_rate, profitability_coefficient, pension_system,
		                          professional_fund, inps_rate_type, manual_contribution_rate, manual_minimum_contribution, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			tax_regime = EXCLUDED.tax_regime,
			substitute_rate = EXCLUDED.substitute_rate,
			profitability_coefficient = EXCLUDED.profitability_coefficient,
			pension_system = EXCLUDED.pension_system,
			professional_fund = EXCLUDED.professional_fund,
			inps_rate_type = EXCLUDED.inps_rate_type,
			manual_contribution_rate = EXCLUDED.manual_contribution_rate,
			manual_minimum_contribution = EXCLUDED.manual_minimum_contribution,
			updated_at = EXCLUDED.updated_at
	`, settings.UserID, settings.TaxRegime, settings.SubstituteRate, settings.ProfitabilityCoefficient,
		settings.PensionSystem, settings.ProfessionalFund, settings.INPSRateType,
		settings.ManualContributionRate, settings.ManualMinimumContribution, settings.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// ValidateSettings checks a combined settings profile.
func ValidateSettings(s *models.TaxSettings) error {
	switch s.TaxRegime {
	case models.RegimeForfettario:
		if s.SubstituteRate != 5 && s.SubstituteRate != 15 {
			return fmt.Errorf("%w: substitute rate must be 5 or 15, got %.2f", ErrInvalidSettings, s.SubstituteRate)
		}
		if s.ProfitabilityCoefficient < 40 || s.ProfitabilityCoefficient > 86 {
			return fmt.Errorf("%w: profitability coefficient must be between 40 and 86, got %.2f", ErrInvalidSettings, s.ProfitabilityCoefficient)
		}
	case models.RegimeOrdinario:
		// No forfettario-only fields to check.
	default:
		return fmt.Errorf("%w: unknown tax regime %q", ErrInvalidSettings, s.TaxRegime)
	}

	switch s.PensionSystem {
	case models.PensionINPS:
		switch s.INPSRateType {
		case models.INPSGestioneSeparata, models.INPSArtisansMerchants:
		case "":
			return fmt.Errorf("%w: inps_rate_type is required for the INPS pension system", ErrInvalidSettings)
		default:
			return fmt.Errorf("%w: unknown INPS rate type %q", ErrInvalidSettings, s.INPSRateType)
		}
	case models.PensionProfessionalFund:
		if s.ProfessionalFund == "" {
			return fmt.Errorf("%w: professional_fund is required for the professional fund pension system", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: unknown pension system %q", ErrInvalidSettings, s.PensionSystem)
	}

	if s.ManualContributionRate < 0 || s.ManualContributionRate > 100 {
		return fmt.Errorf("%w: manual contribution rate out of range", ErrInvalidSettings)
	}
	if s.ManualMinimumContribution < 0 {
		return fmt.Errorf("%w: manual minimum contribution cannot be negative", ErrInvalidSettings)
	}

	return nil
}

// GetIrpefBrackets loads the bracket table for a fiscal year. When the exact
// year is missing the most recent earlier year is used, so a new fiscal year
// works before its table lands. The contiguity check runs on every load and
// logs a diagnostic without blocking the computation.
func (s *SettingsService) GetIrpefBrackets(ctx context.Context, year int) ([]taxcalc.Bracket, error) {
	var effectiveYear int
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(fiscal_year) FROM irpef_brackets WHERE fiscal_year <= $1
	`, year).Scan(&effectiveYear)
	if err != nil {
		return nil, fmt.Errorf("no IRPEF bracket table available for year %d: %w", year, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT lower_bound, upper_bound, rate
		FROM irpef_brackets
		WHERE fiscal_year = $1
		ORDER BY lower_bound
	`, effectiveYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brackets []taxcalc.Bracket
	for rows.Next() {
		var b taxcalc.Bracket
		var upper sql.NullFloat64
		if err := rows.Scan(&b.LowerBound, &upper, &b.Rate); err != nil {
			return nil, err
		}
		if upper.Valid {
			b.UpperBound = &upper.Float64
		}
		brackets = append(brackets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := taxcalc.ValidateContiguity(brackets); err != nil {
		utils.SafeWarn("IRPEF bracket table for year %d failed contiguity check: %v", effectiveYear, err)
	}

	return brackets, nil
}

// ListProfessionalFunds returns the known professional pension funds.
func (s *SettingsService) ListProfessionalFunds(ctx context.Context) ([]models.ProfessionalFund, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, contribution_rate, minimum_contribution, fixed_annual_contribution
		FROM professional_funds
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	funds := []models.ProfessionalFund{}
	for rows.Next() {
		var f models.ProfessionalFund
		if err := rows.Scan(&f.Code, &f.Name, &f.ContributionRate, &f.MinimumContribution, &f.FixedAnnualContribution); err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}

	return funds, rows.Err()
}

// GetProfessionalFund returns a fund by code, sql.ErrNoRows if unknown.
func (s *SettingsService) GetProfessionalFund(ctx context.Context, code string) (*models.ProfessionalFund, error) {
	var f models.ProfessionalFund
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, contribution_rate, minimum_contribution, fixed_annual_contribution
		FROM professional_funds
		WHERE code = $1
	`, code).Scan(&f.Code, &f.Name, &f.ContributionRate, &f.MinimumContribution, &f.FixedAnnualContribution)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
