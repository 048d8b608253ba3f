package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/novafest/registration-backend/internal/gateway"
	"github.com/novafest/registration-backend/internal/interfaces"
	"github.com/novafest/registration-backend/internal/models"
	"github.com/novafest/registration-backend/internal/telemetry"
)

// ErrNotConfigured is returned when the gateway credentials were never
// provided. Callers surface it as a service-unavailable condition without
// issuing any upstream call.
var ErrNotConfigured = errors.New("Payment service not configured")

// DefaultSweepDelay is the pause between consecutive gateway calls in a
// verify-all sweep. It exists purely to bound the outbound request rate.
const DefaultSweepDelay = 300 * time.Millisecond

// EventWriter is the subset of kafka.Writer the verifier publishes through.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Verifier audits gateway-reported payment attempts against locally stored
// order references. It never writes results back to the registration store.
type Verifier struct {
	gateway *gateway.Client
	repo    interfaces.RegistrationRepository
	redis   *redis.Client
	events  EventWriter

	// SweepDelay is overridable so tests do not pay the rate-limit pause.
	SweepDelay time.Duration
}

func NewVerifier(
	gw *gateway.Client,
	repo interfaces.RegistrationRepository,
	redisClient *redis.Client,
	events EventWriter,
) *Verifier {
	return &Verifier{
		gateway:    gw,
		repo:       repo,
		redis:      redisClient,
		events:     events,
		SweepDelay: DefaultSweepDelay,
	}
}

// Classify applies the priority rule over one order's payment attempts.
// First match wins:
//
//  1. any attempt with status "captured" and captured=true -> genuine, the
//     first such attempt (in the gateway's own ordering) is the evidence;
//  2. attempts exist and every one failed -> failed;
//  3. no attempts -> no_payments;
//  4. otherwise -> pending.
//
// A single outstanding attempt among failures keeps the order pending
// rather than prematurely failed.
func Classify(orderID string, count int, items []models.Payment) models.VerificationResult {
	result := models.VerificationResult{
		OrderID:      orderID,
		PaymentCount: count,
		Payments:     summarize(items),
	}

	for i := range items {
		if items[i].Status == models.PaymentStatusCaptured && items[i].Captured {
			result.VerificationStatus = models.VerificationGenuine
			result.GenuinePayment = &models.GenuinePayment{
				ID:       items[i].ID,
				Amount:   items[i].Amount,
				Status:   items[i].Status,
				Captured: items[i].Captured,
				Method:   items[i].Method,
			}
			return result
		}
	}

	switch {
	case count > 0 && len(items) > 0 && allFailed(items):
		result.VerificationStatus = models.VerificationFailed
	case count == 0:
		result.VerificationStatus = models.VerificationNoPayments
	default:
		result.VerificationStatus = models.VerificationPending
	}
	return result
}

func allFailed(items []models.Payment) bool {
	for i := range items {
		if items[i].Status != models.PaymentStatusFailed {
			return false
		}
	}
	return true
}

// summarize re-projects attempts to the display-safe subset. Payer email
// and contact are dropped here and nowhere reintroduced.
func summarize(items []models.Payment) []models.PaymentSummary {
	summaries := make([]models.PaymentSummary, 0, len(items))
	for i := range items {
		summaries = append(summaries, models.PaymentSummary{
			ID:               items[i].ID,
			Amount:           items[i].Amount,
			Status:           items[i].Status,
			Captured:         items[i].Captured,
			Method:           items[i].Method,
			ErrorCode:        items[i].ErrorCode,
			ErrorDescription: items[i].ErrorDescription,
			CreatedAt:        items[i].CreatedAt,
		})
	}
	return summaries
}

// VerifyOrder fetches the order's payment attempts from the gateway and
// classifies them. The result is recomputed live on every call.
func (v *Verifier) VerifyOrder(ctx context.Context, orderID string) (*models.VerificationResult, error) {
	if v.gateway == nil {
		return nil, ErrNotConfigured
	}

	payments, err := v.gateway.FetchOrderPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := Classify(orderID, payments.Count, payments.Items)
	telemetry.VerificationCount.WithLabelValues(string(result.VerificationStatus)).Inc()
	telemetry.Logger.Info("Payment verification",
		zap.String("order_id", orderID),
		zap.String("verification_status", string(result.VerificationStatus)),
		zap.Int("payment_count", result.PaymentCount),
	)

	v.publish(ctx, result)

	return &result, nil
}

// publish emits one verification outcome to the audit topic. Failures are
// logged and swallowed; verification never depends on the broker.
func (v *Verifier) publish(ctx context.Context, result models.VerificationResult) {
	if v.events == nil {
		return
	}

	event := map[string]interface{}{
		"order_id":            result.OrderID,
		"verification_status": result.VerificationStatus,
		"payment_count":       result.PaymentCount,
		"verified_at":         time.Now().UTC(),
	}
	eventJSON, _ := json.Marshal(event)

	if err := v.events.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.OrderID),
		Value: eventJSON,
	}); err != nil {
		telemetry.Logger.Warn("Failed to publish verification event",
			zap.String("order_id", result.OrderID),
			zap.Error(err),
		)
	}
}
