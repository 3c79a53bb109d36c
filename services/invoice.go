package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pivabalance-api/models"
	"pivabalance-api/utils"
)

type InvoiceService struct {
	db *sql.DB
}

func NewInvoiceService(db *sql.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// Create inserts a new invoice for the user. The client VAT number is
// encrypted before it touches the database.
func (s *InvoiceService) Create(ctx context.Context, userID string, req models.CreateInvoiceRequest) (*models.Invoice, error) {
	encryptedVAT, err := utils.EncryptString(req.ClientVAT)
	if err != nil {
		return nil, fmt.Errorf("encrypt client VAT: %w", err)
	}

	invoice := &models.Invoice{
		ID:          uuid.New().String(),
		UserID:      userID,
		FiscalYear:  req.FiscalYear,
		Number:      req.Number,
		IssueDate:   req.IssueDate,
		PaymentDate: req.PaymentDate,
		ClientName:  req.ClientName,
		ClientVAT:   req.ClientVAT,
		Amount:      req.Amount,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, user_id, fiscal_year, number, issue_date, payment_date, client_name, client_vat, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, invoice.ID, invoice.UserID, invoice.FiscalYear, invoice.Number, invoice.IssueDate,
		invoice.PaymentDate, invoice.ClientName, encryptedVAT, invoice.Amount,
		invoice.CreatedAt, invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetByID returns the invoice if it belongs to the user.
func (s *InvoiceService) GetByID(ctx context.Context, id, userID string) (*models.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, fiscal_year, number, issue_date, payment_date, client_name, client_vat, amount, created_at, updated_at
		FROM invoices
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	return scanInvoice(row)
}

// List returns the user's invoices, optionally limited to a fiscal year
// (year 0 means all years), newest first.
func (s *InvoiceService) List(ctx context.Context, userID string, year int) ([]models.Invoice, error) {
	query := `
		SELECT id, user_id, fiscal_year, number, issue_date, payment_date, client_name, client_vat, amount, created_at, updated_at
		FROM invoices
		WHERE user_id = $1 AND ($2 = 0 OR fiscal_year = $2)
		ORDER BY issue_date DESC, number DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *invoice)
	}

	return invoices, rows.Err()
}

// Update applies the non-nil fields of req to the invoice.
func (s *InvoiceService) Update(ctx context.Context, id, userID string, req models.UpdateInvoiceRequest) (*models.Invoice, error) {
	invoice, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Number != nil {
		invoice.Number = *req.Number
	}
	if req.IssueDate != nil {
		invoice.IssueDate = *req.IssueDate
	}
	if req.PaymentDate != nil {
		invoice.PaymentDate = req.PaymentDate
	}
	if req.ClientName != nil {
		invoice.ClientName = *req.ClientName
	}
	if req.ClientVAT != nil {
		invoice.ClientVAT = *req.ClientVAT
	}
	if req.Amount != nil {
		invoice.Amount = *req.Amount
	}
	invoice.UpdatedAt = time.Now()

	encryptedVAT, err := utils.EncryptString(invoice.ClientVAT)
	if err != nil {
		return nil, fmt.Errorf("encrypt client VAT: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE invoices
		SET number = $1, issue_date = $2, payment_date = $3, client_name = $4, client_vat = $5, amount = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`, invoice.Number, invoice.IssueDate, invoice.PaymentDate, invoice.ClientName,
		encryptedVAT, invoice.Amount, invoice.UpdatedAt, id, userID)
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// Delete removes the invoice if it belongs to the user.
func (s *InvoiceService) Delete(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
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

// SumPaidRevenue totals the user's paid invoices for a fiscal year. Cash
// accounting: an invoice counts once it has a payment date.
func (s *InvoiceService) SumPaidRevenue(ctx context.Context, userID string, year int) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM invoices
		WHERE user_id = $1 AND fiscal_year = $2 AND payment_date IS NOT NULL
	`, userID, year).Scan(&total)
	return total, err
}

// SumUnpaidRevenue totals issued but not yet paid invoices for a fiscal year.
func (s *InvoiceService) SumUnpaidRevenue(ctx context.Context, userID string, year int) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM invoices
		WHERE user_id = $1 AND fiscal_year = $2 AND payment_date IS NULL
	`, userID, year).Scan(&total)
	return total, err
}

// MonthlyRevenue returns paid revenue per payment month (1-12) for a year.
func (s *InvoiceService) MonthlyRevenue(ctx context.Context, userID string, year int) (map[int]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM payment_date)::int AS month, COALESCE(SUM(amount), 0)
		FROM invoices
		WHERE user_id = $1 AND fiscal_year = $2 AND payment_date IS NOT NULL
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

// Count returns the number of invoices for a fiscal year.
func (s *InvoiceService) Count(ctx context.Context, userID string, year int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invoices WHERE user_id = $1 AND fiscal_year = $2
	`, userID, year).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var invoice models.Invoice
	var encryptedVAT sql.NullString
	var paymentDate sql.NullTime

	err := row.Scan(&invoice.ID, &invoice.UserID, &invoice.FiscalYear, &invoice.Number,
		&invoice.IssueDate, &paymentDate, &invoice.ClientName, &encryptedVAT,
		&invoice.Amount, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if paymentDate.Valid {
		invoice.PaymentDate = &paymentDate.Time
	}
	if encryptedVAT.Valid {
		vat, err := utils.DecryptString(encryptedVAT.String)
		if err != nil {
			return nil, fmt.Errorf("decrypt client VAT: %w", err)
		}
		invoice.ClientVAT = vat
	}

	return &invoice, nil
}
