package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Maxencejules/payflow/internal/domain"
	paymentDomain "github.com/Maxencejules/payflow/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentModel is the GORM persistence model for the payments table.
// IdempotencyKey and ProviderReference are pointers so that absent values
// persist as NULL and do not collide on the unique indexes.
type PaymentModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Amount            decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	Currency          string          `gorm:"type:varchar(3);not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'PENDING'"`
	CustomerID        string          `gorm:"type:varchar(255)"`
	CustomerEmail     string          `gorm:"type:varchar(255);index"`
	Description       string          `gorm:"type:text"`
	PaymentMethodID   string          `gorm:"type:varchar(255)"`
	ProviderReference *string         `gorm:"type:varchar(255);uniqueIndex"`
	FailureReason     string          `gorm:"type:text"`
	IdempotencyKey    *string         `gorm:"type:varchar(255);uniqueIndex"`
	Version           int64           `gorm:"not null;default:1"`
	CreatedAt         time.Time       `gorm:"type:timestamptz;not null;default:now()"`
	CompletedAt       *time.Time      `gorm:"type:timestamptz"`
	UpdatedAt         time.Time       `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName specifies the table name for GORM.
func (PaymentModel) TableName() string {
	return "payments"
}

// PaymentRepositoryImpl is the GORM-based implementation of payment.Repository.
type PaymentRepositoryImpl struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new GORM-based payment repository.
func NewPaymentRepository(db *gorm.DB) *PaymentRepositoryImpl {
	return &PaymentRepositoryImpl{db: db}
}

// FindByID retrieves a payment by its unique ID.
func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", id.String())
		}
		return nil, err
	}
	return toDomain(&model), nil
}

// FindByIdempotencyKey retrieves a payment by its idempotency key.
func (r *PaymentRepositoryImpl) FindByIdempotencyKey(ctx context.Context, key string) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", key)
		}
		return nil, err
	}
	return toDomain(&model), nil
}

// FindByProviderReference retrieves a payment by its provider reference.
func (r *PaymentRepositoryImpl) FindByProviderReference(ctx context.Context, ref string) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("provider_reference = ?", ref).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", ref)
		}
		return nil, err
	}
	return toDomain(&model), nil
}

// ListByCustomerEmail retrieves all payments for a customer email, newest first.
func (r *PaymentRepositoryImpl) ListByCustomerEmail(ctx context.Context, email string) ([]*paymentDomain.Payment, error) {
	var models []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("customer_email = ?", email).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	payments := make([]*paymentDomain.Payment, len(models))
	for i := range models {
		payments[i] = toDomain(&models[i])
	}
	return payments, nil
}

// Save persists a new payment aggregate. A unique-index violation on
// idempotency_key or provider_reference is surfaced as a conflict error so
// the engine can re-fetch the winning record.
func (r *PaymentRepositoryImpl) Save(ctx context.Context, payment *paymentDomain.Payment) error {
	model := toModel(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("payment with the same unique key already exists")
		}
		return err
	}
	return nil
}

// Update persists changes to an existing payment with optimistic locking.
// The row is only written when the stored version matches the version the
// aggregate was loaded at; a lost race surfaces as a conflict error.
func (r *PaymentRepositoryImpl) Update(ctx context.Context, payment *paymentDomain.Payment) error {
	model := toModel(payment)
	previousVersion := payment.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("Status", "PaymentMethodID", "ProviderReference", "FailureReason", "CompletedAt", "Version", "UpdatedAt").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("payment was modified by another transaction")
	}

	return nil
}

// Ping checks database reachability.
func (r *PaymentRepositoryImpl) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// toDomain maps a PaymentModel to the domain Payment aggregate.
func toDomain(model *PaymentModel) *paymentDomain.Payment {
	var providerRef, idempotencyKey string
	if model.ProviderReference != nil {
		providerRef = *model.ProviderReference
	}
	if model.IdempotencyKey != nil {
		idempotencyKey = *model.IdempotencyKey
	}

	return paymentDomain.Reconstitute(
		model.ID,
		model.Amount,
		model.Currency,
		paymentDomain.Status(model.Status),
		model.CustomerID,
		model.CustomerEmail,
		model.Description,
		model.PaymentMethodID,
		providerRef,
		model.FailureReason,
		idempotencyKey,
		model.Version,
		model.CreatedAt,
		model.CompletedAt,
		model.UpdatedAt,
	)
}

// toModel maps a domain Payment aggregate to a PaymentModel for persistence.
func toModel(p *paymentDomain.Payment) *PaymentModel {
	var providerRef, idempotencyKey *string
	if ref := p.ProviderReference(); ref != "" {
		providerRef = &ref
	}
	if key := p.IdempotencyKey(); key != "" {
		idempotencyKey = &key
	}

	return &PaymentModel{
		ID:                p.ID(),
		Amount:            p.Amount(),
		Currency:          p.Currency(),
		Status:            string(p.Status()),
		CustomerID:        p.CustomerID(),
		CustomerEmail:     p.CustomerEmail(),
		Description:       p.Description(),
		PaymentMethodID:   p.PaymentMethodID(),
		ProviderReference: providerRef,
		FailureReason:     p.FailureReason(),
		IdempotencyKey:    idempotencyKey,
		Version:           p.Version(),
		CreatedAt:         p.CreatedAt(),
		CompletedAt:       p.CompletedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
}
