package models

import "time"

// Registration lifecycle statuses.
const (
	RegistrationPending   = "pending"
	RegistrationConfirmed = "confirmed"
	RegistrationCancelled = "cancelled"
)

// Registration links an attendee to a ticket and, once payment is initiated,
// to a gateway order. The verification core only reads these; it never
// writes verification results back.
type Registration struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	TicketTitle string    `json:"ticket_title"`
	OrderID     string    `json:"razorpay_order_id"`
	PaymentID   *string   `json:"razorpay_payment_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
