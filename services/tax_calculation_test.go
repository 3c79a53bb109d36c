package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pivabalance-api/models"
	"pivabalance-api/taxcalc"
)

func bound(v float64) *float64 {
	return &v
}

func irpef2024() []taxcalc.Bracket {
	return []taxcalc.Bracket{
		{LowerBound: 0, UpperBound: bound(28000), Rate: 23},
		{LowerBound: 28000, UpperBound: bound(50000), Rate: 35},
		{LowerBound: 50000, UpperBound: nil, Rate: 43},
	}
}

func forfettarioSettings() models.TaxSettings {
	return models.TaxSettings{
		TaxRegime:                models.RegimeForfettario,
		SubstituteRate:           15,
		ProfitabilityCoefficient: 78,
		PensionSystem:            models.PensionINPS,
		INPSRateType:             models.INPSGestioneSeparata,
	}
}

func TestEstimate_ForfettarioGestioneSeparata(t *testing.T) {
	summary := Estimate(TaxInputs{
		FiscalYear: 2024,
		Revenue:    50000,
		Settings:   forfettarioSettings(),
	})

	// taxable = 50000 * 78% = 39000
	assert.Equal(t, 39000.0, summary.TaxableIncome)
	// contributions = 39000 * 26.07% = 10167.30
	assert.InDelta(t, 10167.30, summary.ContributionsAmount, 0.01)
	// substitute tax = (39000 - 10167.30) * 15% = 4324.905
	assert.InDelta(t, 4324.905, summary.IrpefAmount, 0.01)
	assert.InDelta(t, 14492.21, summary.TotalDue, 0.02)
	assert.Empty(t, summary.IrpefBreakdown)
	assert.Equal(t, models.RegimeForfettario, summary.TaxRegime)
}

func TestEstimate_ForfettarioStartupRate(t *testing.T) {
	settings := forfettarioSettings()
	settings.SubstituteRate = 5

	summary := Estimate(TaxInputs{FiscalYear: 2024, Revenue: 30000, Settings: settings})

	// taxable = 23400, contributions = 6100.38, base = 17299.62, tax 5% = 864.98
	assert.Equal(t, 23400.0, summary.TaxableIncome)
	assert.InDelta(t, 6100.38, summary.ContributionsAmount, 0.01)
	assert.InDelta(t, 864.98, summary.IrpefAmount, 0.01)
}

func TestEstimate_ForfettarioIgnoresCosts(t *testing.T) {
	summary := Estimate(TaxInputs{
		FiscalYear:      2024,
		Revenue:         50000,
		DeductibleCosts: 20000,
		Settings:        forfettarioSettings(),
	})

	// The coefficient replaces real costs entirely.
	assert.Equal(t, 39000.0, summary.TaxableIncome)
	assert.Equal(t, 20000.0, summary.DeductibleCosts)
}

func TestEstimate_OrdinarioProgressiveBrackets(t *testing.T) {
	settings := models.TaxSettings{
		TaxRegime:     models.RegimeOrdinario,
		PensionSystem: models.PensionINPS,
		INPSRateType:  models.INPSGestioneSeparata,
	}

	summary := Estimate(TaxInputs{
		FiscalYear:      2024,
		Revenue:         80000,
		DeductibleCosts: 20000,
		Settings:        settings,
		Brackets:        irpef2024(),
	})

	// taxable = 60000: 28000@23 + 22000@35 + 10000@43 = 18440
	assert.Equal(t, 60000.0, summary.TaxableIncome)
	assert.Equal(t, 18440.0, summary.IrpefAmount)
	require.Len(t, summary.IrpefBreakdown, 3)
	assert.Equal(t, taxcalc.Allocation{Rate: 23, TaxableAmount: 28000, Tax: 6440}, summary.IrpefBreakdown[0])
	assert.Equal(t, taxcalc.Allocation{Rate: 35, TaxableAmount: 22000, Tax: 7700}, summary.IrpefBreakdown[1])
	assert.Equal(t, taxcalc.Allocation{Rate: 43, TaxableAmount: 10000, Tax: 4300}, summary.IrpefBreakdown[2])
	// contributions = 60000 * 26.07% = 15642
	assert.InDelta(t, 15642.0, summary.ContributionsAmount, 0.01)
	assert.InDelta(t, 34082.0, summary.TotalDue, 0.02)
}

func TestEstimate_OrdinarioCostsAboveRevenue(t *testing.T) {
	settings := models.TaxSettings{
		TaxRegime:     models.RegimeOrdinario,
		PensionSystem: models.PensionINPS,
		INPSRateType:  models.INPSGestioneSeparata,
	}

	summary := Estimate(TaxInputs{
		FiscalYear:      2024,
		Revenue:         10000,
		DeductibleCosts: 15000,
		Settings:        settings,
		Brackets:        irpef2024(),
	})

	assert.Equal(t, 0.0, summary.TaxableIncome)
	assert.Equal(t, 0.0, summary.IrpefAmount)
	assert.Equal(t, 0.0, summary.ContributionsAmount)
	assert.Equal(t, 0.0, summary.TotalDue)
	assert.Equal(t, 0.0, summary.EffectiveRate)
}

func TestEstimate_ZeroRevenue(t *testing.T) {
	summary := Estimate(TaxInputs{FiscalYear: 2024, Settings: forfettarioSettings()})

	assert.Equal(t, 0.0, summary.TotalDue)
	assert.Equal(t, 0.0, summary.EffectiveRate)
}

func TestComputeContributions_ArtisansMinimumFloor(t *testing.T) {
	settings := models.TaxSettings{
		PensionSystem: models.PensionINPS,
		INPSRateType:  models.INPSArtisansMerchants,
	}

	// Below the minimal income the fixed contribution still applies.
	low := computeContributions(10000, settings, nil)
	assert.InDelta(t, ArtisansMinimalIncome*ArtisansMerchantsRate/100, low, 1e-9)

	// Above it the percentage applies to the whole base.
	high := computeContributions(30000, settings, nil)
	assert.InDelta(t, 30000*ArtisansMerchantsRate/100, high, 1e-9)
}

func TestComputeContributions_ProfessionalFund(t *testing.T) {
	settings := models.TaxSettings{
		PensionSystem:    models.PensionProfessionalFund,
		ProfessionalFund: "inarcassa",
	}
	fund := &models.ProfessionalFund{
		Code:                    "inarcassa",
		ContributionRate:        14.5,
		MinimumContribution:     2695,
		FixedAnnualContribution: 805,
	}

	// Percentage above the minimum.
	high := computeContributions(40000, settings, fund)
	assert.InDelta(t, 40000*14.5/100+805, high, 1e-9)

	// Minimum plus fixed part on low income.
	low := computeContributions(5000, settings, fund)
	assert.InDelta(t, 2695+805.0, low, 1e-9)
}

func TestComputeContributions_ManualOverride(t *testing.T) {
	settings := models.TaxSettings{
		PensionSystem:             models.PensionINPS,
		INPSRateType:              models.INPSGestioneSeparata,
		ManualContributionRate:    10,
		ManualMinimumContribution: 1500,
	}

	assert.InDelta(t, 3000.0, computeContributions(30000, settings, nil), 1e-9)
	assert.InDelta(t, 1500.0, computeContributions(5000, settings, nil), 1e-9)
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.TaxSettings)
		wantErr string
	}{
		{
			name:   "valid forfettario defaults",
			mutate: func(s *models.TaxSettings) {},
		},
		{
			name: "valid ordinario",
			mutate: func(s *models.TaxSettings) {
				s.TaxRegime = models.RegimeOrdinario
			},
		},
		{
			name: "unknown regime",
			mutate: func(s *models.TaxSettings) {
				s.TaxRegime = "flat"
			},
			wantErr: "unknown tax regime",
		},
		{
			name: "bad substitute rate",
			mutate: func(s *models.TaxSettings) {
				s.SubstituteRate = 10
			},
			wantErr: "substitute rate",
		},
		{
			name: "coefficient out of range",
			mutate: func(s *models.TaxSettings) {
				s.ProfitabilityCoefficient = 95
			},
			wantErr: "profitability coefficient",
		},
		{
			name: "fund system without fund code",
			mutate: func(s *models.TaxSettings) {
				s.PensionSystem = models.PensionProfessionalFund
			},
			wantErr: "professional_fund is required",
		},
		{
			name: "unknown inps rate type",
			mutate: func(s *models.TaxSettings) {
				s.INPSRateType = "commercianti"
			},
			wantErr: "unknown INPS rate type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings("user-1")
			tt.mutate(&settings)

			err := ValidateSettings(&settings)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSettings)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
