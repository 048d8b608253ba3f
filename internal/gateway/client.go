package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/novafest/registration-backend/internal/models"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// ErrMissingCredentials is returned by NewClient when either half of the key
// pair is absent.
var ErrMissingCredentials = errors.New("gateway key id and key secret are required")

// Error is the single failure kind for every gateway call: HTTP error
// statuses, error-shaped bodies, malformed responses and transport failures
// all normalize to it. Message is the upstream-supplied description when one
// exists, otherwise a fixed per-operation fallback.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// errorBody is the error envelope the gateway attaches to failed responses.
type errorBody struct {
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client is an authenticated HTTP client for the payment gateway REST API.
// The Basic credential is computed once at construction and kept only in
// process memory; it is never logged.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

// Option adjusts a Client at construction time.
type Option func(*Client)

// WithBaseURL points the client at a different API host. Used by tests to
// substitute an httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a gateway client from a key pair. Both halves are
// required; timeouts are left to the underlying transport.
func NewClient(keyID, keySecret string, opts ...Option) (*Client, error) {
	if keyID == "" || keySecret == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		baseURL:    defaultBaseURL,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(keyID+":"+keySecret)),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateOrder registers a new order with the gateway. Amount is passed
// through verbatim in the gateway's minor currency unit.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*models.Order, error) {
	payload := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if notes != nil {
		payload["notes"] = notes
	}

	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", payload, "Failed to create order", &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, &Error{Message: "Failed to create order"}
	}
	return &order, nil
}

// FetchOrder looks up a single order by its gateway identifier.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, "Failed to fetch order", &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, &Error{Message: "Failed to fetch order"}
	}
	return &order, nil
}

// FetchOrderPayments returns every payment attempt the gateway recorded for
// an order. This is the call the verification engine audits.
func (c *Client) FetchOrderPayments(ctx context.Context, orderID string) (*models.PaymentList, error) {
	var payments models.PaymentList
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/payments", nil, "Failed to fetch order payments", &payments); err != nil {
		return nil, err
	}
	for _, item := range payments.Items {
		if item.ID == "" {
			return nil, &Error{Message: "Failed to fetch order payments"}
		}
	}
	return &payments, nil
}

// do issues one request and normalizes every failure mode into *Error. A
// response is an error when its status is non-2xx or its body carries an
// error object, matching the gateway's documented envelope.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, fallback string, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return &Error{Message: fallback}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Message: fallback}
	}
	req.Header.Set("Authorization", c.authHeader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: fmt.Sprintf("%s: %v", fallback, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Message: fmt.Sprintf("%s: %v", fallback, err)}
	}

	var envelope errorBody
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		ok = false
	}
	if !ok {
		message := fallback
		if envelope.Error != nil && envelope.Error.Description != "" {
			message = envelope.Error.Description
		}
		return &Error{Message: message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Message: fallback}
	}
	return nil
}
