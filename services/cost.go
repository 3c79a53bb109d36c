package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"pivabalance-api/models"
)

type CostService struct {
	db *sql.DB
}

func NewCostService(db *sql.DB) *CostService {
	return &CostService{db: db}
}

func (s *CostService) Create(ctx context.Context, userID string, req models.CreateCostRequest) (*models.Cost, error) {
	cost := &models.Cost{
		ID:          uuid.New().String(),
		UserID:      userID,
		Description: req.Description,
		Date:        req.Date,
		Amount:      req.Amount,
		Deductible:  *req.Deductible,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO costs (id, user_id, description, date, amount, deductible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, cost.ID, cost.UserID, cost.Description, cost.Date, cost.Amount, cost.Deductible,
		cost.CreatedAt, cost.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return cost, nil
}

func (s *CostService) GetByID(ctx context.Context, id, userID string) (*models.Cost, error) {
	var cost models.Cost
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, description, date, amount, deductible, created_at, updated_at
		FROM costs
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&cost.ID, &cost.UserID, &cost.Description, &cost.Date,
		&cost.Amount, &cost.Deductible, &cost.CreatedAt, &cost.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cost, nil
}

// List returns the user's costs, optionally limited to a calendar year
// (year 0 means all years), newest first.
func (s *CostService) List(ctx context.Context, userID string, year int) ([]models.Cost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, description, date, amount, deductible, created_at, updated_at
		FROM costs
		WHERE user_id = $1 AND ($2 = 0 OR EXTRACT(YEAR FROM date) = $2)
		ORDER BY date DESC
	`, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := []models.Cost{}
	for rows.Next() {
		var cost models.Cost
		if err := rows.Scan(&cost.ID, &cost.UserID, &cost.Description, &cost.Date,
			&cost.Amount, &cost.Deductible, &cost.CreatedAt, &cost.UpdatedAt); err != nil {
			return nil, err
		}
		costs = append(costs, cost)
	}

	return costs, rows.Err()
}

func (s *CostService) Update(ctx context.Context, id, userID string, req models.UpdateCostRequest) (*models.Cost, error) {
	cost, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		cost.Description = *req.Description
	}
	if req.Date != nil {
		cost.Date = *req.Date
	}
	if req.Amount != nil {
		cost.Amount = *req.Amount
	}
	if req.Deductible != nil {
		cost.Deductible = *req.Deductible
	}
	cost.UpdatedAt = time.Now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE costs
		SET description = $1, date = $2, amount = $3, deductible = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, cost.Description, cost.Date, cost.Amount, cost.Deductible, cost.UpdatedAt, id, userID)
	if err != nil {
		return nil, err
	}

	return cost, nil
}

func (s *CostService) Delete(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM costs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SumDeductible totals deductible costs for a calendar year.
func (s *CostService) SumDeductible(ctx context.Context, userID string, year int) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM costs
		WHERE user_id = $1 AND EXTRACT(YEAR FROM date) = $2 AND deductible = TRUE
	`, userID, year).Scan(&total)
	return total, err
}

// MonthlyCosts returns total costs per month (1-12) for a year.
func (s *CostService) MonthlyCosts(ctx context.Context, userID string, year int) (map[int]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM date)::int AS month, COALESCE(SUM(amount), 0)
		FROM costs
		WHERE user_id = $1 AND EXTRACT(YEAR FROM date) = $2
		GROUP BY month
	`, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	monthly := make(map[int]float64)
	for rows.Next() {
		var month int
		var total float64
		if err := rows.Scan(&month, &total); err != nil {
			return nil, err
		}
		monthly[month] = total
	}

	return monthly, rows.Err()
}

// Count returns the number of costs recorded in a calendar year.
func (s *CostService) Count(ctx context.Context, userID string, year int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM costs WHERE user_id = $1 AND EXTRACT(YEAR FROM date) = $2
	`, userID, year).Scan(&count)
	return count, err
}
