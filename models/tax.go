package models

import "pivabalance-api/taxcalc"

// TaxSummary is the yearly tax and contribution estimate returned by
// /taxes/summary. Monetary fields are rounded to euro cents.
type TaxSummary struct {
	FiscalYear          int                   `json:"fiscal_year"`
	TaxRegime           string                `json:"tax_regime"`
	Revenue             float64               `json:"revenue"`
	DeductibleCosts     float64               `json:"deductible_costs"`
	TaxableIncome       float64               `json:"taxable_income"`
	IrpefAmount         float64               `json:"irpef_amount"`
	IrpefBreakdown      []taxcalc.Allocation  `json:"irpef_breakdown,omitempty"`
	ContributionsAmount float64               `json:"contributions_amount"`
	TotalDue            float64               `json:"total_due"`
	EffectiveRate       float64               `json:"effective_rate"` // percentage over revenue
}

// MonthlyTotal is one point of the dashboard revenue/cost series.
type MonthlyTotal struct {
	Month   int     `json:"month"` // 1-12
	Revenue float64 `json:"revenue"`
	Costs   float64 `json:"costs"`
}

// DashboardSummary is the aggregate view backing the user dashboard.
type DashboardSummary struct {
	FiscalYear     int            `json:"fiscal_year"`
	Revenue        float64        `json:"revenue"`
	UnpaidRevenue  float64        `json:"unpaid_revenue"`
	Costs          float64        `json:"costs"`
	InvoiceCount   int            `json:"invoice_count"`
	CostCount      int            `json:"cost_count"`
	Monthly        []MonthlyTotal `json:"monthly"`
	EstimatedTaxes *TaxSummary    `json:"estimated_taxes,omitempty"`
}
