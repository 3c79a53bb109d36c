package services

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"pivabalance-api/models"
	"pivabalance-api/taxcalc"
	"pivabalance-api/utils"
)

// INPS parameters. Gestione separata is the catch-all scheme for freelancers
// without a professional fund; artisans and merchants pay a fixed contribution
// on a minimal income plus a percentage above it.
const (
	GestioneSeparataRate  = 26.07
	ArtisansMerchantsRate = 24.0
	ArtisansMinimalIncome = 18415.0
)

// TaxCalculationService aggregates a user's yearly figures and turns them
// into a tax and contribution estimate.
type TaxCalculationService struct {
	invoices *InvoiceService
	costs    *CostService
	settings *SettingsService
}

func NewTaxCalculationService(invoices *InvoiceService, costs *CostService, settings *SettingsService) *TaxCalculationService {
	return &TaxCalculationService{invoices: invoices, costs: costs, settings: settings}
}

// TaxInputs is everything Estimate needs, already loaded. Keeping the
// computation separate from the data access makes it testable without a
// database.
type TaxInputs struct {
	FiscalYear      int
	Revenue         float64
	DeductibleCosts float64
	Settings        models.TaxSettings
	Brackets        []taxcalc.Bracket
	Fund            *models.ProfessionalFund
}

// ComputeSummary loads the user's data for the year and produces the
// estimate.
func (s *TaxCalculationService) ComputeSummary(ctx context.Context, userID string, year int) (*models.TaxSummary, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	revenue, err := s.invoices.SumPaidRevenue(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	deductibleCosts, err := s.costs.SumDeductible(ctx, userID, year)
	if err != nil {
		return nil, fmt.Errorf("sum costs: %w", err)
	}

	inputs := TaxInputs{
		FiscalYear:      year,
		Revenue:         revenue,
		DeductibleCosts: deductibleCosts,
		Settings:        *settings,
	}

	if settings.TaxRegime == models.RegimeOrdinario {
		brackets, err := s.settings.GetIrpefBrackets(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("load IRPEF brackets: %w", err)
		}
		inputs.Brackets = brackets
	}

	if settings.PensionSystem == models.PensionProfessionalFund {
		fund, err := s.settings.GetProfessionalFund(ctx, settings.ProfessionalFund)
		if err != nil {
			return nil, fmt.Errorf("load professional fund: %w", err)
		}
		inputs.Fund = fund
	}

	summary := Estimate(inputs)
	utils.LogTaxCalculation(userID, year, settings.TaxRegime)
	return &summary, nil
}

// Estimate computes the yearly tax summary from already-loaded inputs.
//
// Forfettario: taxable income is revenue times the profitability coefficient;
// contributions are computed on it, then the substitute tax applies to the
// taxable income net of contributions (contributions paid are deductible from
// the substitute tax base).
//
// Ordinario: taxable income is revenue minus deductible costs; IRPEF comes
// from the progressive bracket allocation, contributions from the same
// taxable base.
//
// All monetary outputs are rounded to euro cents at this boundary; the
// intermediate arithmetic stays in float64.
func Estimate(in TaxInputs) models.TaxSummary {
	summary := models.TaxSummary{
		FiscalYear:      in.FiscalYear,
		TaxRegime:       in.Settings.TaxRegime,
		Revenue:         round2(in.Revenue),
		DeductibleCosts: round2(in.DeductibleCosts),
	}

	var taxable float64
	switch in.Settings.TaxRegime {
	case models.RegimeForfettario:
		taxable = in.Revenue * in.Settings.ProfitabilityCoefficient / 100
	default:
		taxable = math.Max(0, in.Revenue-in.DeductibleCosts)
	}
	summary.TaxableIncome = round2(taxable)

	contributions := computeContributions(taxable, in.Settings, in.Fund)
	summary.ContributionsAmount = round2(contributions)

	switch in.Settings.TaxRegime {
	case models.RegimeForfettario:
		base := math.Max(0, taxable-contributions)
		summary.IrpefAmount = round2(base * in.Settings.SubstituteRate / 100)
	default:
		result := taxcalc.Allocate(taxable, in.Brackets)
		summary.IrpefAmount = round2(result.TotalTax)
		summary.IrpefBreakdown = roundBreakdown(result.Brackets)
	}

	summary.TotalDue = round2(summary.IrpefAmount + summary.ContributionsAmount)
	if in.Revenue > 0 {
		summary.EffectiveRate = round2(summary.TotalDue / in.Revenue * 100)
	}

	return summary
}

// computeContributions applies the pension scheme from settings to the
// taxable income. Zero or negative taxable income still owes fixed minimums
// where the scheme has them.
func computeContributions(taxable float64, settings models.TaxSettings, fund *models.ProfessionalFund) float64 {
	if taxable < 0 {
		taxable = 0
	}

	// Manual override wins over every scheme.
	if settings.ManualContributionRate > 0 {
		return math.Max(taxable*settings.ManualContributionRate/100, settings.ManualMinimumContribution)
	}

	if settings.PensionSystem == models.PensionProfessionalFund && fund != nil {
		contribution := math.Max(taxable*fund.ContributionRate/100, fund.MinimumContribution)
		return contribution + fund.FixedAnnualContribution
	}

	switch settings.INPSRateType {
	case models.INPSArtisansMerchants:
		// Fixed contribution on the minimal income even with no profit,
		// percentage on everything above it.
		base := math.Max(taxable, ArtisansMinimalIncome)
		return base * ArtisansMerchantsRate / 100
	default:
		return taxable * GestioneSeparataRate / 100
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func roundBreakdown(allocations []taxcalc.Allocation) []taxcalc.Allocation {
	rounded := make([]taxcalc.Allocation, len(allocations))
	for i, a := range allocations {
		rounded[i] = taxcalc.Allocation{
			Rate:          a.Rate,
			TaxableAmount: round2(a.TaxableAmount),
			Tax:           round2(a.Tax),
		}
	}
	return rounded
}
