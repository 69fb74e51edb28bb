package application

import (
	"context"
	"errors"
	"time"

	"github.com/Maxencejules/payflow/internal/adapter"
	"github.com/Maxencejules/payflow/internal/domain"
	"github.com/Maxencejules/payflow/internal/domain/payment"
	"github.com/Maxencejules/payflow/internal/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreatePaymentRequest is the DTO for creating a new payment.
type CreatePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency" binding:"required,len=3"`
	CustomerEmail string          `json:"customer_email" binding:"required,email"`
	CustomerID    string          `json:"customer_id"`
	Description   string          `json:"description"`
}

// PaymentDTO is the API response DTO for payment data.
type PaymentDTO struct {
	ID                uuid.UUID       `json:"id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	CustomerID        string          `json:"customer_id,omitempty"`
	CustomerEmail     string          `json:"customer_email"`
	Description       string          `json:"description,omitempty"`
	PaymentMethodID   string          `json:"payment_method_id,omitempty"`
	ProviderReference string          `json:"provider_reference,omitempty"`
	FailureReason     string          `json:"failure_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

// EventPublisher publishes lifecycle events. Satisfied by events.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event events.CloudEvent) error
}

// PaymentService is the lifecycle engine. It owns every status transition,
// the idempotency-dedup decision, and the policy translating provider
// failures into persisted payment state.
type PaymentService struct {
	repo      payment.Repository
	provider  adapter.ProviderGateway
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService. publisher may be nil, in
// which case no events are emitted.
func NewPaymentService(
	repo payment.Repository,
	provider adapter.ProviderGateway,
	publisher EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		logger:    logger,
	}
}

// CreatePayment creates a new payment with idempotency support.
//
// When an idempotency key is supplied and a payment already exists for it,
// the existing payment is returned verbatim; the new request's payload is
// not revalidated against the stored one. A provider authorization failure
// is absorbed into a durably persisted FAILED payment rather than surfaced
// as a request error, so the caller always gets a record of the attempt.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest, idempotencyKey string) (*PaymentDTO, error) {
	s.logger.Info("creating payment",
		zap.String("amount", req.Amount.String()),
		zap.String("currency", req.Currency),
		zap.String("customer_email", req.CustomerEmail),
	)

	if idempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			s.logger.Info("returning existing payment for idempotency key",
				zap.String("idempotency_key", idempotencyKey),
				zap.String("payment_id", existing.ID().String()),
			)
			dto := toPaymentDTO(existing)
			return &dto, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	p := payment.NewPayment(req.Amount, req.Currency, req.CustomerEmail, req.CustomerID, req.Description, idempotencyKey)

	ref, err := s.provider.Authorize(ctx, p.Amount(), p.Currency(), p.CustomerEmail())
	if err != nil {
		s.logger.Error("provider authorization failed, persisting FAILED payment",
			zap.String("payment_id", p.ID().String()),
			zap.Error(err),
		)
		_ = p.Fail("Provider error: " + err.Error())
	} else {
		if err := p.AttachProviderReference(ref); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, p); err != nil {
		// A concurrent create won the race on the idempotency key; treat
		// the uniqueness violation as a dedup hit.
		if idempotencyKey != "" && errors.Is(err, domain.ErrConflict) {
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, idempotencyKey)
			if findErr != nil {
				return nil, err
			}
			s.logger.Info("lost idempotency insert race, returning existing payment",
				zap.String("idempotency_key", idempotencyKey),
				zap.String("payment_id", existing.ID().String()),
			)
			dto := toPaymentDTO(existing)
			return &dto, nil
		}
		return nil, err
	}

	s.publishCreated(ctx, p)

	dto := toPaymentDTO(p)
	return &dto, nil
}

// ConfirmPayment confirms a pending payment by capturing it with the
// provider. The PROCESSING checkpoint is persisted before the capture call
// so a crash mid-call leaves an auditable record, and so that of two racing
// confirmations only the version-CAS winner ever reaches the provider. A
// capture failure or decline is returned as a normal FAILED payment
// response, not a request error.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID, paymentMethodID string) (*PaymentDTO, error) {
	s.logger.Info("confirming payment", zap.String("payment_id", paymentID.String()))

	p, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := p.StartProcessing(paymentMethodID); err != nil {
		return nil, err
	}
	p.IncrementVersion()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the race: another request already moved this payment on.
			current, findErr := s.repo.FindByID(ctx, paymentID)
			if findErr != nil {
				return nil, err
			}
			return nil, domain.NewInvalidStateError(string(current.Status()), string(payment.StatusProcessing))
		}
		return nil, err
	}

	if err := s.provider.Capture(ctx, p.ProviderReference(), paymentMethodID); err != nil {
		s.logger.Warn("payment capture failed",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err),
		)
		if errors.Is(err, adapter.ErrDeclined) {
			_ = p.Fail("Payment confirmation failed: " + err.Error())
		} else {
			_ = p.Fail(err.Error())
		}
	} else {
		if err := p.Complete(); err != nil {
			return nil, err
		}
		s.logger.Info("payment confirmed successfully", zap.String("payment_id", paymentID.String()))
	}
	p.IncrementVersion()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	switch p.Status() {
	case payment.StatusCompleted:
		s.publishCompleted(ctx, p)
	case payment.StatusFailed:
		s.publishFailed(ctx, p)
	}

	dto := toPaymentDTO(p)
	return &dto, nil
}

// GetPayment retrieves a payment by its ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentDTO, error) {
	p, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	dto := toPaymentDTO(p)
	return &dto, nil
}

// ListPaymentsByEmail retrieves all payments for a customer email, newest
// first. An unknown email yields an empty slice, never an error.
func (s *PaymentService) ListPaymentsByEmail(ctx context.Context, email string) ([]PaymentDTO, error) {
	payments, err := s.repo.ListByCustomerEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos, nil
}

// Healthy reports whether the store and the provider are both reachable.
func (s *PaymentService) Healthy(ctx context.Context) bool {
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error("store health check failed", zap.Error(err))
		return false
	}
	if !s.provider.Healthy(ctx) {
		s.logger.Error("provider health check failed")
		return false
	}
	return true
}

// --- Event publishing (best effort, never affects the request outcome) ---

func (s *PaymentService) publishCreated(ctx context.Context, p *payment.Payment) {
	evt := events.PaymentCreatedEvent{
		PaymentID:         p.ID(),
		Amount:            p.Amount(),
		Currency:          p.Currency(),
		Status:            string(p.Status()),
		CustomerEmail:     p.CustomerEmail(),
		ProviderReference: p.ProviderReference(),
		OccurredAt:        time.Now().UTC(),
	}
	s.publish(ctx, events.PaymentCreated, evt)
	if p.Status() == payment.StatusFailed {
		s.publishFailed(ctx, p)
	}
}

func (s *PaymentService) publishCompleted(ctx context.Context, p *payment.Payment) {
	completedAt := time.Now().UTC()
	if p.CompletedAt() != nil {
		completedAt = *p.CompletedAt()
	}
	evt := events.PaymentCompletedEvent{
		PaymentID:         p.ID(),
		Amount:            p.Amount(),
		Currency:          p.Currency(),
		ProviderReference: p.ProviderReference(),
		PaymentMethodID:   p.PaymentMethodID(),
		CompletedAt:       completedAt,
		OccurredAt:        time.Now().UTC(),
	}
	s.publish(ctx, events.PaymentCompleted, evt)
}

func (s *PaymentService) publishFailed(ctx context.Context, p *payment.Payment) {
	evt := events.PaymentFailedEvent{
		PaymentID:  p.ID(),
		Reason:     p.FailureReason(),
		OccurredAt: time.Now().UTC(),
	}
	s.publish(ctx, events.PaymentFailed, evt)
}

func (s *PaymentService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	ce, err := events.NewCloudEvent("payflow-api", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.Error(err))
		return
	}
	if err := s.publisher.PublishEvent(ctx, events.TopicPaymentEvents, ce); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

// toPaymentDTO maps a domain Payment to a PaymentDTO.
func toPaymentDTO(p *payment.Payment) PaymentDTO {
	return PaymentDTO{
		ID:                p.ID(),
		Amount:            p.Amount(),
		Currency:          p.Currency(),
		Status:            string(p.Status()),
		CustomerID:        p.CustomerID(),
		CustomerEmail:     p.CustomerEmail(),
		Description:       p.Description(),
		PaymentMethodID:   p.PaymentMethodID(),
		ProviderReference: p.ProviderReference(),
		FailureReason:     p.FailureReason(),
		CreatedAt:         p.CreatedAt(),
		CompletedAt:       p.CompletedAt(),
	}
}
