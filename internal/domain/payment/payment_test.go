package payment

import (
	"errors"
	"testing"

	"github.com/Maxencejules/payflow/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T) *Payment {
	t.Helper()
	return NewPayment(decimal.NewFromFloat(10.00), "usd", "alice@example.com", "cust_1", "test order", "")
}

func TestNewPayment_Defaults(t *testing.T) {
	p := newTestPayment(t)

	assert.Equal(t, StatusPending, p.Status())
	assert.Equal(t, "USD", p.Currency(), "currency is normalized to uppercase")
	assert.Equal(t, "alice@example.com", p.CustomerEmail())
	assert.Empty(t, p.ProviderReference())
	assert.Empty(t, p.FailureReason())
	assert.Nil(t, p.CompletedAt())
	assert.Equal(t, int64(1), p.Version())
	assert.False(t, p.CreatedAt().IsZero())
}

func TestAttachProviderReference(t *testing.T) {
	p := newTestPayment(t)

	require.NoError(t, p.AttachProviderReference("pi_abc123"))
	assert.Equal(t, "pi_abc123", p.ProviderReference())

	// Set-once: a second attach is rejected.
	err := p.AttachProviderReference("pi_other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, "pi_abc123", p.ProviderReference())
}

func TestStartProcessing_FromPending(t *testing.T) {
	p := newTestPayment(t)

	require.NoError(t, p.StartProcessing("pm_card_visa"))
	assert.Equal(t, StatusProcessing, p.Status())
	assert.Equal(t, "pm_card_visa", p.PaymentMethodID())
}

func TestStartProcessing_RejectedOutsidePending(t *testing.T) {
	for _, status := range []Status{StatusProcessing, StatusCompleted, StatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			p := newTestPayment(t)
			require.NoError(t, p.StartProcessing("pm_1"))
			if status == StatusCompleted {
				require.NoError(t, p.Complete())
			}
			if status == StatusFailed {
				require.NoError(t, p.Fail("declined"))
			}

			err := p.StartProcessing("pm_2")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidState))
			assert.Equal(t, "pm_1", p.PaymentMethodID(), "no mutation on rejected transition")
		})
	}
}

func TestComplete_FromProcessing(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.StartProcessing("pm_1"))

	require.NoError(t, p.Complete())
	assert.Equal(t, StatusCompleted, p.Status())
	require.NotNil(t, p.CompletedAt())
	assert.False(t, p.CompletedAt().IsZero())
}

func TestComplete_RejectedFromPending(t *testing.T) {
	p := newTestPayment(t)

	err := p.Complete()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Nil(t, p.CompletedAt())
}

func TestFail_FromNonTerminal(t *testing.T) {
	t.Run("from pending", func(t *testing.T) {
		p := newTestPayment(t)
		require.NoError(t, p.Fail("provider unavailable"))
		assert.Equal(t, StatusFailed, p.Status())
		assert.Equal(t, "provider unavailable", p.FailureReason())
		assert.Nil(t, p.CompletedAt())
	})

	t.Run("from processing", func(t *testing.T) {
		p := newTestPayment(t)
		require.NoError(t, p.StartProcessing("pm_1"))
		require.NoError(t, p.Fail("card declined"))
		assert.Equal(t, StatusFailed, p.Status())
		assert.Equal(t, "card declined", p.FailureReason())
	})
}

func TestFail_RejectedFromTerminal(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		p := newTestPayment(t)
		require.NoError(t, p.StartProcessing("pm_1"))
		require.NoError(t, p.Complete())

		err := p.Fail("too late")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidState))
		assert.Equal(t, StatusCompleted, p.Status())
	})

	t.Run("failed", func(t *testing.T) {
		p := newTestPayment(t)
		require.NoError(t, p.Fail("first"))

		err := p.Fail("second")
		require.Error(t, err)
		assert.Equal(t, "first", p.FailureReason())
	})
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestReconstitute_RoundTrip(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.AttachProviderReference("pi_round"))

	rebuilt := Reconstitute(
		p.ID(), p.Amount(), p.Currency(), p.Status(),
		p.CustomerID(), p.CustomerEmail(), p.Description(),
		p.PaymentMethodID(), p.ProviderReference(), p.FailureReason(), p.IdempotencyKey(),
		p.Version(), p.CreatedAt(), p.CompletedAt(), p.UpdatedAt(),
	)

	assert.Equal(t, p.ID(), rebuilt.ID())
	assert.Equal(t, p.Status(), rebuilt.Status())
	assert.Equal(t, p.ProviderReference(), rebuilt.ProviderReference())
	assert.True(t, p.Amount().Equal(rebuilt.Amount()))

	// The rebuilt aggregate enforces the same transitions.
	require.NoError(t, rebuilt.StartProcessing("pm_1"))
	require.NoError(t, rebuilt.Complete())
}
