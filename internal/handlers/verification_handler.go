package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novafest/registration-backend/internal/service"
	"github.com/novafest/registration-backend/internal/telemetry"
)

type VerificationHandler struct {
	verifier *service.Verifier
}

func NewVerificationHandler(verifier *service.Verifier) *VerificationHandler {
	return &VerificationHandler{verifier: verifier}
}

type verifyRequest struct {
	OrderID string `json:"order_id"`
}

// FetchOrderPayments audits one order's payment attempts against the
// gateway and returns the classification plus the redacted evidence.
func (h *VerificationHandler) FetchOrderPayments(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing order_id"})
		return
	}

	result, err := h.verifier.VerifyOrder(c.Request.Context(), req.OrderID)
	if errors.Is(err, service.ErrNotConfigured) {
		telemetry.Logger.Error("Missing gateway credentials")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Payment service not configured"})
		return
	}
	if err != nil {
		telemetry.Logger.Error("Verification failed",
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"order_id":            result.OrderID,
		"verification_status": result.VerificationStatus,
		"payment_count":       result.PaymentCount,
		"genuine_payment":     result.GenuinePayment,
		"payments":            result.Payments,
	})
}

// VerifyAll runs the sequential sweep over every registration that carries
// an order reference.
func (h *VerificationHandler) VerifyAll(c *gin.Context) {
	report, err := h.verifier.VerifyAll(c.Request.Context())
	if errors.Is(err, service.ErrSweepInProgress) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	if errors.Is(err, service.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Payment service not configured"})
		return
	}
	if err != nil {
		telemetry.Logger.Error("Verification sweep failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to verify payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"total":    report.Total,
		"verified": report.Verified,
		"errors":   report.Errors,
		"entries":  report.Entries,
	})
}
