package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/novafest/registration-backend/internal/gateway"
	"github.com/novafest/registration-backend/internal/models"
	"github.com/novafest/registration-backend/internal/telemetry"
)

func init() {
	telemetry.Logger = zap.NewNop()
}

type eventRecorder struct {
	messages []kafka.Message
	err      error
}

func (r *eventRecorder) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, msgs...)
	return nil
}

func TestClassifyGenuinePrecedence(t *testing.T) {
	items := []models.Payment{
		{ID: "pay_1", Status: models.PaymentStatusFailed},
		{ID: "pay_2", Status: models.PaymentStatusCaptured, Captured: true, Amount: 50000, Method: "upi"},
		{ID: "pay_3", Status: models.PaymentStatusCaptured, Captured: true},
		{ID: "pay_4", Status: models.PaymentStatusFailed},
	}

	result := Classify("order_1", len(items), items)

	assert.Equal(t, models.VerificationGenuine, result.VerificationStatus)
	require.NotNil(t, result.GenuinePayment)
	assert.Equal(t, "pay_2", result.GenuinePayment.ID, "evidence must be the first captured attempt in list order")
	assert.Equal(t, "upi", result.GenuinePayment.Method)
	assert.Equal(t, 4, result.PaymentCount)
}

func TestClassifyCapturedFlagRequired(t *testing.T) {
	// status "captured" alone is not enough; the captured flag must agree.
	items := []models.Payment{
		{ID: "pay_1", Status: models.PaymentStatusCaptured, Captured: false},
	}

	result := Classify("order_1", 1, items)

	assert.Equal(t, models.VerificationPending, result.VerificationStatus)
	assert.Nil(t, result.GenuinePayment)
}

func TestClassifyUnanimousFailure(t *testing.T) {
	items := []models.Payment{
		{ID: "pay_1", Status: models.PaymentStatusFailed},
		{ID: "pay_2", Status: models.PaymentStatusFailed},
	}

	result := Classify("order_1", 2, items)

	assert.Equal(t, models.VerificationFailed, result.VerificationStatus)
	assert.Nil(t, result.GenuinePayment)
}

func TestClassifyMixedIsPending(t *testing.T) {
	// One in-flight attempt among failures keeps the order pending.
	items := []models.Payment{
		{ID: "pay_1", Status: models.PaymentStatusFailed},
		{ID: "pay_2", Status: "created"},
	}

	result := Classify("order_1", 2, items)

	assert.Equal(t, models.VerificationPending, result.VerificationStatus)
}

func TestClassifyEmpty(t *testing.T) {
	result := Classify("order_1", 0, nil)

	assert.Equal(t, models.VerificationNoPayments, result.VerificationStatus)
	assert.Nil(t, result.GenuinePayment)
	assert.Empty(t, result.Payments)
}

func TestClassifyIdempotent(t *testing.T) {
	items := []models.Payment{
		{ID: "pay_1", Status: models.PaymentStatusFailed},
		{ID: "pay_2", Status: models.PaymentStatusCaptured, Captured: true},
	}

	first := Classify("order_1", 2, items)
	second := Classify("order_1", 2, items)

	assert.Equal(t, first, second)
}

func TestClassifyRedactsPayerFields(t *testing.T) {
	desc := "card declined"
	items := []models.Payment{
		{
			ID:               "pay_1",
			Status:           models.PaymentStatusFailed,
			Email:            "attendee@example.com",
			Contact:          "+919999999999",
			ErrorCode:        &desc,
			ErrorDescription: &desc,
		},
	}

	result := Classify("order_1", 1, items)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "attendee@example.com")
	assert.NotContains(t, string(raw), "+919999999999")
	assert.Contains(t, string(raw), "card declined")
}

func TestVerifyOrderNotConfigured(t *testing.T) {
	v := NewVerifier(nil, nil, nil, nil)

	_, err := v.VerifyOrder(context.Background(), "order_1")

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifyOrderClassifiesAndPublishes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/order_1/payments", r.URL.Path)
		w.Write([]byte(`{"entity":"collection","count":1,"items":[{"id":"pay_1","amount":1000,"status":"captured","captured":true,"method":"card","created_at":1700000000}]}`))
	}))
	defer srv.Close()

	client, err := gateway.NewClient("key", "secret", gateway.WithBaseURL(srv.URL))
	require.NoError(t, err)

	rec := &eventRecorder{}
	v := NewVerifier(client, nil, nil, rec)

	result, err := v.VerifyOrder(context.Background(), "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationGenuine, result.VerificationStatus)

	require.Len(t, rec.messages, 1)
	assert.Equal(t, "order_1", string(rec.messages[0].Key))

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.messages[0].Value, &event))
	assert.Equal(t, "genuine", event["verification_status"])
}

func TestVerifyOrderSurvivesPublishFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity":"collection","count":0,"items":[]}`))
	}))
	defer srv.Close()

	client, err := gateway.NewClient("key", "secret", gateway.WithBaseURL(srv.URL))
	require.NoError(t, err)

	rec := &eventRecorder{err: assert.AnError}
	v := NewVerifier(client, nil, nil, rec)

	result, err := v.VerifyOrder(context.Background(), "order_1")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationNoPayments, result.VerificationStatus)
}
