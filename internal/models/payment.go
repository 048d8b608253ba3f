package models

// VerificationStatus classifies an order after auditing its gateway payments.
type VerificationStatus string

const (
	VerificationGenuine    VerificationStatus = "genuine"
	VerificationFailed     VerificationStatus = "failed"
	VerificationNoPayments VerificationStatus = "no_payments"
	VerificationPending    VerificationStatus = "pending"
)

// Gateway-reported payment statuses the engine discriminates on. Anything
// else is treated as in-flight.
const (
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
)

// Order is the gateway-side record for one payment request.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Payment is one gateway-recorded attempt at settling an order. Amounts are
// in the gateway's minor currency unit. Error fields are populated only on
// failed attempts.
type Payment struct {
	ID               string  `json:"id"`
	Entity           string  `json:"entity"`
	Amount           int64   `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
	OrderID          string  `json:"order_id"`
	Method           string  `json:"method"`
	Captured         bool    `json:"captured"`
	Description      *string `json:"description"`
	Email            string  `json:"email"`
	Contact          string  `json:"contact"`
	Fee              *int64  `json:"fee"`
	Tax              *int64  `json:"tax"`
	ErrorCode        *string `json:"error_code"`
	ErrorDescription *string `json:"error_description"`
	ErrorSource      *string `json:"error_source"`
	ErrorStep        *string `json:"error_step"`
	ErrorReason      *string `json:"error_reason"`
	CreatedAt        int64   `json:"created_at"`
}

// PaymentList mirrors the gateway's collection envelope for an order's
// payments.
type PaymentList struct {
	Entity string    `json:"entity"`
	Count  int       `json:"count"`
	Items  []Payment `json:"items"`
}

// PaymentSummary is the display-safe projection of a payment attempt. Payer
// email and contact never appear here.
type PaymentSummary struct {
	ID               string  `json:"id"`
	Amount           int64   `json:"amount"`
	Status           string  `json:"status"`
	Captured         bool    `json:"captured"`
	Method           string  `json:"method"`
	ErrorCode        *string `json:"error_code"`
	ErrorDescription *string `json:"error_description"`
	CreatedAt        int64   `json:"created_at"`
}

// GenuinePayment is the evidence attached to a genuine classification: the
// first captured attempt in the gateway's own ordering.
type GenuinePayment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
	Captured bool   `json:"captured"`
	Method   string `json:"method"`
}

// VerificationResult is recomputed on every verification call and never
// persisted; it is a pure function of the attempt list at query time.
type VerificationResult struct {
	OrderID            string             `json:"order_id"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	PaymentCount       int                `json:"payment_count"`
	GenuinePayment     *GenuinePayment    `json:"genuine_payment"`
	Payments           []PaymentSummary   `json:"payments"`
}

// SweepEntry records the outcome of one order inside a verify-all sweep. A
// per-order failure carries its message here instead of aborting the sweep.
type SweepEntry struct {
	RegistrationID     string             `json:"registration_id"`
	OrderID            string             `json:"order_id"`
	VerificationStatus VerificationStatus `json:"verification_status,omitempty"`
	Error              string             `json:"error,omitempty"`
}

// SweepReport summarizes a verify-all sweep.
type SweepReport struct {
	Total    int          `json:"total"`
	Verified int          `json:"verified"`
	Errors   int          `json:"errors"`
	Entries  []SweepEntry `json:"entries"`
}
