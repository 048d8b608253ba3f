package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/novafest/registration-backend/internal/models"
)

type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS registrations (
			id VARCHAR(64) PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			ticket_title VARCHAR(255) NOT NULL,
			razorpay_order_id VARCHAR(255),
			razorpay_payment_id VARCHAR(255),
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_order_id ON registrations(razorpay_order_id)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.Status == "" {
		reg.Status = models.RegistrationPending
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO registrations (id, full_name, email, ticket_title, razorpay_order_id, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING created_at
	`, reg.ID, reg.FullName, reg.Email, reg.TicketTitle, reg.OrderID, reg.Status).Scan(&reg.CreatedAt)
}

func (r *RegistrationRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Registration, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, ticket_title, razorpay_order_id, razorpay_payment_id, status, created_at
		FROM registrations WHERE razorpay_order_id = $1
	`, orderID)
	return scanRegistration(row)
}

// ListWithOrders returns every registration that references a gateway order,
// newest first. This is the population a verify-all sweep walks.
func (r *RegistrationRepository) ListWithOrders(ctx context.Context) ([]models.Registration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, email, ticket_title, razorpay_order_id, razorpay_payment_id, status, created_at
		FROM registrations
		WHERE razorpay_order_id IS NOT NULL AND razorpay_order_id <> ''
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// AttachPayment records the gateway payment id against the matching
// registration and confirms it. Returns the number of rows updated so the
// caller can surface a not-found.
func (r *RegistrationRepository) AttachPayment(ctx context.Context, orderID, paymentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE registrations
		SET razorpay_payment_id = $1, status = $2
		WHERE razorpay_order_id = $3
	`, paymentID, models.RegistrationConfirmed, orderID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	var orderID, paymentID sql.NullString
	err := row.Scan(&reg.ID, &reg.FullName, &reg.Email, &reg.TicketTitle, &orderID, &paymentID, &reg.Status, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	reg.OrderID = orderID.String
	if paymentID.Valid {
		reg.PaymentID = &paymentID.String
	}
	return &reg, nil
}
