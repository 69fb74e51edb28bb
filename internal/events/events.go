package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopicPaymentEvents is the Kafka topic payment lifecycle events publish to.
const TopicPaymentEvents = "payment.events"

// Event type identifiers.
const (
	PaymentCreated   = "payment.created"
	PaymentCompleted = "payment.completed"
	PaymentFailed    = "payment.failed"
)

// PaymentCreatedEvent is published after a payment is durably created,
// whether it landed in PENDING or was absorbed into FAILED.
type PaymentCreatedEvent struct {
	PaymentID         uuid.UUID       `json:"payment_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	CustomerEmail     string          `json:"customer_email"`
	ProviderReference string          `json:"provider_reference,omitempty"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// PaymentCompletedEvent is published after a successful capture.
type PaymentCompletedEvent struct {
	PaymentID         uuid.UUID       `json:"payment_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	ProviderReference string          `json:"provider_reference"`
	PaymentMethodID   string          `json:"payment_method_id"`
	CompletedAt       time.Time       `json:"completed_at"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// PaymentFailedEvent is published whenever a payment lands in FAILED.
type PaymentFailedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
