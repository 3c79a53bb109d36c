package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pivabalance-api/models"
)

// UserDataExport is the GDPR data-portability document: everything the
// application stores about one user, in one JSON payload.
type UserDataExport struct {
	ExportedAt time.Time          `json:"exported_at"`
	User       models.User        `json:"user"`
	Settings   models.TaxSettings `json:"tax_settings"`
	Invoices   []models.Invoice   `json:"invoices"`
	Costs      []models.Cost      `json:"costs"`
}

type ExportService struct {
	db       *sql.DB
	invoices *InvoiceService
	costs    *CostService
	settings *SettingsService
}

func NewExportService(db *sql.DB, invoices *InvoiceService, costs *CostService, settings *SettingsService) *ExportService {
	return &ExportService{db: db, invoices: invoices, costs: costs, settings: settings}
}

// Export gathers the user's complete data set. Encrypted fields come back
// decrypted: the export is for the data subject, not for storage.
func (s *ExportService) Export(ctx context.Context, userID string) (*UserDataExport, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, totp_enabled, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&user.ID, &user.Email, &user.Name, &user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	invoices, err := s.invoices.List(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}

	costs, err := s.costs.List(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load costs: %w", err)
	}

	return &UserDataExport{
		ExportedAt: time.Now(),
		User:       user,
		Settings:   *settings,
		Invoices:   invoices,
		Costs:      costs,
	}, nil
}
