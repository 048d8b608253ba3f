package interfaces

import (
	"context"

	"github.com/novafest/registration-backend/internal/models"
)

// RegistrationRepository defines the contract for registration data access.
// The verification core only reads; writes exist for the registration and
// callback flows.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Registration, error)
	ListWithOrders(ctx context.Context) ([]models.Registration, error)
	AttachPayment(ctx context.Context, orderID, paymentID string) (int64, error)
}
