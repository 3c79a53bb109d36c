package models

import "time"

// Cost is a business expense. Only deductible costs reduce taxable income,
// and only under the ordinario regime; the forfettario regime replaces real
// costs with a flat profitability coefficient.
type Cost struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Deductible  bool      `json:"deductible"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateCostRequest struct {
	Description string    `json:"description" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Deductible  *bool     `json:"deductible" binding:"required"`
}

type UpdateCostRequest struct {
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	Deductible  *bool      `json:"deductible,omitempty"`
}
