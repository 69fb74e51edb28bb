package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for Payment aggregates.
// Uniqueness of idempotency_key and provider_reference is enforced at the
// storage layer; Save surfaces a violation as a domain conflict error.
type Repository interface {
	// FindByID retrieves a payment by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIdempotencyKey retrieves a payment by its idempotency key.
	FindByIdempotencyKey(ctx context.Context, key string) (*Payment, error)

	// FindByProviderReference retrieves a payment by its provider reference.
	FindByProviderReference(ctx context.Context, ref string) (*Payment, error)

	// ListByCustomerEmail retrieves all payments for a customer email,
	// newest first.
	ListByCustomerEmail(ctx context.Context, email string) ([]*Payment, error)

	// Save persists a new payment aggregate.
	Save(ctx context.Context, payment *Payment) error

	// Update persists changes to an existing payment aggregate with
	// optimistic locking.
	Update(ctx context.Context, payment *Payment) error

	// Ping checks store reachability.
	Ping(ctx context.Context) error
}
