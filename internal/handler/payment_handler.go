package handler

import (
	"errors"
	"net/http"

	"github.com/Maxencejules/payflow/internal/application"
	"github.com/Maxencejules/payflow/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const idempotencyKeyHeader = "Idempotency-Key"

// PaymentHandler handles HTTP requests for payment operations.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers all payment routes on the given router group.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.APIInfo)
		payments.POST("/:id/confirm", h.ConfirmPayment)
		payments.GET("/:id", h.GetPayment)
		payments.GET("/customer/:email", h.GetCustomerPayments)
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req application.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.Amount.IsPositive() {
		badRequest(c, "amount must be greater than 0")
		return
	}

	idempotencyKey := c.GetHeader(idempotencyKeyHeader)

	dto, err := h.service.CreatePayment(c.Request.Context(), req, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto)
}

// ConfirmPayment handles POST /api/v1/payments/:id/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid payment ID")
		return
	}

	var req struct {
		PaymentMethodID string `json:"payment_method_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	dto, err := h.service.ConfirmPayment(c.Request.Context(), paymentID, req.PaymentMethodID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid payment ID")
		return
	}

	dto, err := h.service.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto)
}

// GetCustomerPayments handles GET /api/v1/payments/customer/:email
func (h *PaymentHandler) GetCustomerPayments(c *gin.Context) {
	email := c.Param("email")

	dtos, err := h.service.ListPaymentsByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos)
}

// APIInfo handles GET /api/v1/payments
func (h *PaymentHandler) APIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "PayFlow Payment API",
		"version":     "1.0.0",
		"description": "Payment processing service",
	})
}

// respondError maps a domain error to an HTTP status. Provider failures
// never reach this path; the engine absorbs them into payment state.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
