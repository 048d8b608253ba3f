package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/novafest/registration-backend/internal/gateway"
	"github.com/novafest/registration-backend/internal/telemetry"
)

type OrderHandler struct {
	gateway *gateway.Client
}

func NewOrderHandler(gw *gateway.Client) *OrderHandler {
	return &OrderHandler{gateway: gw}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// CreateOrder registers a new order with the gateway. Amount is the
// gateway's minor currency unit and is passed through verbatim.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing or invalid amount"})
		return
	}
	if req.Currency == "" || req.Receipt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing currency or receipt"})
		return
	}

	if h.gateway == nil {
		telemetry.Logger.Error("Missing gateway credentials")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Payment service not configured"})
		return
	}

	order, err := h.gateway.CreateOrder(c.Request.Context(), req.Amount, req.Currency, req.Receipt, req.Notes)
	if err != nil {
		telemetry.Logger.Error("Order creation failed",
			zap.String("receipt", req.Receipt),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}
