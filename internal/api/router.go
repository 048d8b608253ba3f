package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/novafest/registration-backend/internal/handlers"
	"github.com/novafest/registration-backend/internal/telemetry"
)

// CORSMiddleware attaches the permissive headers the browser clients expect
// on every response and short-circuits preflight requests with a 200.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

		if c.Request.Method == http.MethodOptions {
			c.String(http.StatusOK, "ok")
			c.Abort()
			return
		}

		c.Next()
	}
}

func NewRouter(
	verificationHandler *handlers.VerificationHandler,
	orderHandler *handlers.OrderHandler,
	registrationHandler *handlers.RegistrationHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware())
	r.Use(telemetry.TracingMiddleware())

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Method not allowed"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "registration-backend"})
	})

	// Payment function routes, mirroring the serverless surface the web
	// client calls.
	r.POST("/functions/fetch-order-payments", verificationHandler.FetchOrderPayments)
	r.POST("/functions/create-order", orderHandler.CreateOrder)
	r.POST("/functions/verify-signature", registrationHandler.VerifySignature)

	// Registration routes
	r.POST("/registrations", registrationHandler.Create)

	// Admin routes
	r.GET("/admin/registrations", registrationHandler.ListWithOrders)
	r.POST("/admin/verify-all", verificationHandler.VerifyAll)

	return r
}
