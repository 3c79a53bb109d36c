package models

import "time"

// Invoice is a single issued invoice. Revenue for a fiscal year counts only
// invoices with a payment date (cash accounting, as the forfettario regime
// requires). ClientVAT is stored encrypted at rest.
type Invoice struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	FiscalYear  int        `json:"fiscal_year"`
	Number      string     `json:"number"`
	IssueDate   time.Time  `json:"issue_date"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	ClientName  string     `json:"client_name"`
	ClientVAT   string     `json:"client_vat,omitempty"`
	Amount      float64    `json:"amount"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateInvoiceRequest struct {
	FiscalYear  int        `json:"fiscal_year" binding:"required,min=2000,max=2100"`
	Number      string     `json:"number" binding:"required"`
	IssueDate   time.Time  `json:"issue_date" binding:"required"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	ClientName  string     `json:"client_name" binding:"required"`
	ClientVAT   string     `json:"client_vat,omitempty"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
}

type UpdateInvoiceRequest struct {
	Number      *string    `json:"number,omitempty"`
	IssueDate   *time.Time `json:"issue_date,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	ClientName  *string    `json:"client_name,omitempty"`
	ClientVAT   *string    `json:"client_vat,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
}
