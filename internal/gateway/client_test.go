package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient("", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewClient("key", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewClient("key", "secret")
	assert.NoError(t, err)
}

func TestFetchOrderPayments(t *testing.T) {
	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("key_id:key_secret"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/order_123/payments", r.URL.Path)
		assert.Equal(t, expectedAuth, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"entity": "collection",
			"count": 2,
			"items": [
				{"id": "pay_1", "amount": 50000, "currency": "INR", "status": "failed", "order_id": "order_123", "method": "card", "captured": false, "error_code": "BAD_REQUEST_ERROR", "created_at": 1700000000},
				{"id": "pay_2", "amount": 50000, "currency": "INR", "status": "captured", "order_id": "order_123", "method": "upi", "captured": true, "created_at": 1700000100}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewClient("key_id", "key_secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	payments, err := client.FetchOrderPayments(context.Background(), "order_123")
	require.NoError(t, err)
	assert.Equal(t, 2, payments.Count)
	require.Len(t, payments.Items, 2)
	assert.Equal(t, "pay_1", payments.Items[0].ID)
	assert.True(t, payments.Items[1].Captured)
	require.NotNil(t, payments.Items[0].ErrorCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", *payments.Items[0].ErrorCode)
}

func TestFetchOrderPaymentsUpstreamDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"order_xyz is not a valid id"}}`))
	}))
	defer srv.Close()

	client, err := NewClient("key", "secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.FetchOrderPayments(context.Background(), "order_xyz")
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "order_xyz is not a valid id", gwErr.Message)
}

func TestFetchOrderPaymentsFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient("key", "secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.FetchOrderPayments(context.Background(), "order_1")
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Failed to fetch order payments", gwErr.Message)
}

func TestErrorBodyOnSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"description":"authentication failed"}}`))
	}))
	defer srv.Close()

	client, err := NewClient("key", "secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.FetchOrder(context.Background(), "order_1")
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "authentication failed", gwErr.Message)
}

func TestTransportErrorNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := NewClient("key", "secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.FetchOrderPayments(context.Background(), "order_1")
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Contains(t, gwErr.Message, "Failed to fetch order payments")
}

func TestFetchOrderPaymentsRejectsMissingIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity":"collection","count":1,"items":[{"amount":100,"status":"captured","captured":true}]}`))
	}))
	defer srv.Close()

	client, err := NewClient("key", "secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.FetchOrderPayments(context.Background(), "order_1")
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Failed to fetch order payments", gwErr.Message)
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(50000), body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, "reg_42", body["receipt"])
		assert.Equal(t, map[string]interface{}{"ticket": "Workshop Pass"}, body["notes"])

		w.Write([]byte(`{"id":"order_new","amount":50000,"currency":"INR","receipt":"reg_42","status":"created"}`))
	}))
	defer srv.Close()

	client, err := NewClient("key", "secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	order, err := client.CreateOrder(context.Background(), 50000, "INR", "reg_42", map[string]string{"ticket": "Workshop Pass"})
	require.NoError(t, err)
	assert.Equal(t, "order_new", order.ID)
	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrderRejectsMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient("key", "secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = client.CreateOrder(context.Background(), 100, "INR", "r1", nil)
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Failed to create order", gwErr.Message)
}

func TestFetchOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/order_1", r.URL.Path)
		w.Write([]byte(`{"id":"order_1","amount":1000,"currency":"INR","receipt":"r1","status":"paid"}`))
	}))
	defer srv.Close()

	client, err := NewClient("key", "secret", WithBaseURL(srv.URL))
	require.NoError(t, err)

	order, err := client.FetchOrder(context.Background(), "order_1")
	require.NoError(t, err)
	assert.Equal(t, "paid", order.Status)
}

func TestGatewayErrorIsError(t *testing.T) {
	err := error(&Error{Message: "boom"})
	assert.Equal(t, "boom", err.Error())
	assert.False(t, errors.Is(err, ErrMissingCredentials))
}
