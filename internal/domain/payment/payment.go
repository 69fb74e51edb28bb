package payment

import (
	"strings"
	"time"

	"github.com/Maxencejules/payflow/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the state of a payment in its lifecycle.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"

	// Declared for forward compatibility; no transition into these states
	// exists yet. Refund and cancel flows live outside this service.
	StatusCancelled         Status = "CANCELLED"
	StatusRefunded          Status = "REFUNDED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
)

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Payment is the aggregate root for the payment lifecycle domain.
// Identity fields (id, amount, currency, customer, idempotency key) are fixed
// at construction; only the lifecycle envelope (status, provider reference,
// payment method, failure reason, completedAt) mutates, and only through the
// transition methods below.
type Payment struct {
	id                uuid.UUID
	amount            decimal.Decimal
	currency          string
	status            Status
	customerID        string
	customerEmail     string
	description       string
	paymentMethodID   string
	providerReference string
	failureReason     string
	idempotencyKey    string
	version           int64
	createdAt         time.Time
	completedAt       *time.Time
	updatedAt         time.Time
}

// NewPayment creates a new Payment aggregate in PENDING state.
// The currency code is normalized to uppercase.
func NewPayment(amount decimal.Decimal, currency, customerEmail, customerID, description, idempotencyKey string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		id:             uuid.New(),
		amount:         amount,
		currency:       strings.ToUpper(currency),
		status:         StatusPending,
		customerID:     customerID,
		customerEmail:  customerEmail,
		description:    description,
		idempotencyKey: idempotencyKey,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID             { return p.id }
func (p *Payment) Amount() decimal.Decimal   { return p.amount }
func (p *Payment) Currency() string          { return p.currency }
func (p *Payment) Status() Status            { return p.status }
func (p *Payment) CustomerID() string        { return p.customerID }
func (p *Payment) CustomerEmail() string     { return p.customerEmail }
func (p *Payment) Description() string       { return p.description }
func (p *Payment) PaymentMethodID() string   { return p.paymentMethodID }
func (p *Payment) ProviderReference() string { return p.providerReference }
func (p *Payment) FailureReason() string     { return p.failureReason }
func (p *Payment) IdempotencyKey() string    { return p.idempotencyKey }
func (p *Payment) Version() int64            { return p.version }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
func (p *Payment) CompletedAt() *time.Time   { return p.completedAt }
func (p *Payment) UpdatedAt() time.Time      { return p.updatedAt }

// --- Behavior / State Transitions ---

// AttachProviderReference records the reference returned by a successful
// provider authorization. It may be set at most once, while still PENDING.
func (p *Payment) AttachProviderReference(ref string) error {
	if p.providerReference != "" {
		return domain.NewConflictError("provider reference already set")
	}
	if p.status != StatusPending {
		return domain.NewInvalidStateError(string(p.status), string(StatusPending))
	}
	p.providerReference = ref
	p.updatedAt = time.Now().UTC()
	return nil
}

// StartProcessing transitions from PENDING to PROCESSING when a confirmation
// request arrives, recording the payment method to charge.
func (p *Payment) StartProcessing(paymentMethodID string) error {
	if p.status != StatusPending {
		return domain.NewInvalidStateError(string(p.status), string(StatusProcessing))
	}
	p.status = StatusProcessing
	p.paymentMethodID = paymentMethodID
	p.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions from PROCESSING to COMPLETED after a successful
// provider capture, stamping completedAt.
func (p *Payment) Complete() error {
	if p.status != StatusProcessing {
		return domain.NewInvalidStateError(string(p.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	p.status = StatusCompleted
	p.completedAt = &now
	p.updatedAt = now
	return nil
}

// Fail transitions any non-terminal status to FAILED with a reason.
func (p *Payment) Fail(reason string) error {
	if p.status.IsTerminal() {
		return domain.NewInvalidStateError(string(p.status), string(StatusFailed))
	}
	p.status = StatusFailed
	p.failureReason = reason
	p.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Payment) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}

// --- Reconstitution (used by repository to rebuild from persistence) ---

// Reconstitute rebuilds a Payment from persisted data.
func Reconstitute(
	id uuid.UUID,
	amount decimal.Decimal,
	currency string,
	status Status,
	customerID, customerEmail, description string,
	paymentMethodID, providerReference, failureReason, idempotencyKey string,
	version int64,
	createdAt time.Time,
	completedAt *time.Time,
	updatedAt time.Time,
) *Payment {
	return &Payment{
		id:                id,
		amount:            amount,
		currency:          currency,
		status:            status,
		customerID:        customerID,
		customerEmail:     customerEmail,
		description:       description,
		paymentMethodID:   paymentMethodID,
		providerReference: providerReference,
		failureReason:     failureReason,
		idempotencyKey:    idempotencyKey,
		version:           version,
		createdAt:         createdAt,
		completedAt:       completedAt,
		updatedAt:         updatedAt,
	}
}
