package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novafest/registration-backend/internal/gateway"
	"github.com/novafest/registration-backend/internal/interfaces"
	"github.com/novafest/registration-backend/internal/models"
	"github.com/novafest/registration-backend/internal/telemetry"
)

type RegistrationHandler struct {
	repo      interfaces.RegistrationRepository
	gateway   *gateway.Client
	keySecret string
}

func NewRegistrationHandler(repo interfaces.RegistrationRepository, gw *gateway.Client, keySecret string) *RegistrationHandler {
	return &RegistrationHandler{
		repo:      repo,
		gateway:   gw,
		keySecret: keySecret,
	}
}

type createRegistrationRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	TicketTitle string `json:"ticket_title"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// Create stores a new registration. When the ticket is paid (amount > 0) a
// gateway order is created first, with the registration id as the merchant
// receipt, and its id is stored on the registration.
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req createRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if req.FullName == "" || req.Email == "" || req.TicketTitle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing full_name, email or ticket_title"})
		return
	}

	reg := models.Registration{
		ID:          uuid.NewString(),
		FullName:    req.FullName,
		Email:       req.Email,
		TicketTitle: req.TicketTitle,
		Status:      models.RegistrationPending,
	}

	if req.Amount > 0 {
		if h.gateway == nil {
			telemetry.Logger.Error("Missing gateway credentials")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Payment service not configured"})
			return
		}
		currency := req.Currency
		if currency == "" {
			currency = "INR"
		}
		order, err := h.gateway.CreateOrder(c.Request.Context(), req.Amount, currency, reg.ID, map[string]string{
			"ticket": req.TicketTitle,
		})
		if err != nil {
			telemetry.Logger.Error("Order creation failed",
				zap.String("registration_id", reg.ID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		reg.OrderID = order.ID
	}

	if err := h.repo.Create(c.Request.Context(), &reg); err != nil {
		telemetry.Logger.Error("Registration insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "registration": reg})
}

// ListWithOrders returns the registrations the admin verification screen
// audits: those referencing a gateway order, newest first.
func (h *RegistrationHandler) ListWithOrders(c *gin.Context) {
	regs, err := h.repo.ListWithOrders(c.Request.Context())
	if err != nil {
		telemetry.Logger.Error("Registration listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch registrations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"count":         len(regs),
		"registrations": regs,
	})
}

type signatureRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifySignature authenticates a gateway checkout callback. On a valid
// signature the payment id is attached to the matching registration and the
// registration is confirmed.
func (h *RegistrationHandler) VerifySignature(c *gin.Context) {
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing razorpay_order_id, razorpay_payment_id or razorpay_signature"})
		return
	}

	if h.keySecret == "" {
		telemetry.Logger.Error("Missing gateway credentials")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Payment service not configured"})
		return
	}

	if !gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature, h.keySecret) {
		c.JSON(http.StatusOK, gin.H{"success": true, "valid": false})
		return
	}

	rows, err := h.repo.AttachPayment(c.Request.Context(), req.OrderID, req.PaymentID)
	if err != nil {
		telemetry.Logger.Error("Payment attach failed",
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to confirm registration"})
		return
	}
	if rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Registration not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "valid": true})
}
