package models

import "time"

// ============================================================================
// TAX SETTINGS
// ============================================================================

// Tax regimes. Forfettario replaces IRPEF with a flat substitute tax on a
// coefficient-reduced base; ordinario applies the progressive IRPEF brackets
// to revenue minus deductible costs.
const (
	RegimeForfettario = "forfettario"
	RegimeOrdinario   = "ordinario"
)

// Pension systems.
const (
	PensionINPS             = "inps"
	PensionProfessionalFund = "professional_fund"
)

// INPS rate types for the non-fund case.
const (
	INPSGestioneSeparata  = "gestione_separata"
	INPSArtisansMerchants = "artisans_merchants"
)

// TaxSettings is the per-user tax profile, one row per user.
type TaxSettings struct {
	UserID                    string    `json:"user_id"`
	TaxRegime                 string    `json:"tax_regime"`
	SubstituteRate            float64   `json:"substitute_rate"`           // 5 or 15, forfettario only
	ProfitabilityCoefficient  float64   `json:"profitability_coefficient"` // 40-86, forfettario only
	PensionSystem             string    `json:"pension_system"`
	ProfessionalFund          string    `json:"professional_fund,omitempty"`
	INPSRateType              string    `json:"inps_rate_type,omitempty"`
	ManualContributionRate    float64   `json:"manual_contribution_rate,omitempty"`
	ManualMinimumContribution float64   `json:"manual_minimum_contribution,omitempty"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	TaxRegime                 *string  `json:"tax_regime,omitempty"`
	SubstituteRate            *float64 `json:"substitute_rate,omitempty"`
	ProfitabilityCoefficient  *float64 `json:"profitability_coefficient,omitempty"`
	PensionSystem             *string  `json:"pension_system,omitempty"`
	ProfessionalFund          *string  `json:"professional_fund,omitempty"`
	INPSRateType              *string  `json:"inps_rate_type,omitempty"`
	ManualContributionRate    *float64 `json:"manual_contribution_rate,omitempty"`
	ManualMinimumContribution *float64 `json:"manual_minimum_contribution,omitempty"`
}

// ============================================================================
// REFERENCE TABLES
// ============================================================================

// IrpefBracket is one stored row of a fiscal year's IRPEF table.
type IrpefBracket struct {
	ID         string   `json:"id"`
	FiscalYear int      `json:"fiscal_year"`
	LowerBound float64  `json:"lower_bound"`
	UpperBound *float64 `json:"upper_bound"`
	Rate       float64  `json:"rate"`
}

// ProfessionalFund is a professional pension fund ("cassa") with its
// contribution parameters.
type ProfessionalFund struct {
	Code                    string  `json:"code"`
	Name                    string  `json:"name"`
	ContributionRate        float64 `json:"contribution_rate"`
	MinimumContribution     float64 `json:"minimum_contribution"`
	FixedAnnualContribution float64 `json:"fixed_annual_contribution"`
}
