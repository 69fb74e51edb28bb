package adapter

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrDeclined marks a logical decline by the provider, as opposed to a
// transport failure. Both map to a FAILED payment; the distinction only
// survives in the failure reason text.
var ErrDeclined = errors.New("payment declined by provider")

// ProviderGateway defines the Anti-Corruption Layer interface for the
// external payment processor. This abstraction decouples the lifecycle
// engine from the provider API.
type ProviderGateway interface {
	// Authorize registers the payment with the provider and returns an
	// opaque provider reference for the later capture call.
	Authorize(ctx context.Context, amount decimal.Decimal, currency, customerEmail string) (providerRef string, err error)

	// Capture charges the previously authorized payment using the given
	// payment method. A decline is returned as an error wrapping ErrDeclined.
	Capture(ctx context.Context, providerRef, paymentMethodID string) error

	// Healthy reports whether the provider is reachable.
	Healthy(ctx context.Context) bool
}

// SimulatedProviderOptions tunes the development/testing provider.
// All rates default to zero so the simulator is deterministic unless
// explicitly configured otherwise.
type SimulatedProviderOptions struct {
	// AuthorizeFailRate is the probability [0,1) that Authorize errors.
	AuthorizeFailRate float64
	// CaptureDeclineRate is the probability [0,1) that Capture declines.
	CaptureDeclineRate float64
	// Latency is an artificial delay applied to each call.
	Latency time.Duration
}

// SimulatedProvider is a development/testing implementation of
// ProviderGateway. It simulates provider behavior without requiring a real
// processor account.
type SimulatedProvider struct {
	opts   SimulatedProviderOptions
	logger *zap.Logger
}

// NewSimulatedProvider creates a new simulated provider gateway.
func NewSimulatedProvider(opts SimulatedProviderOptions, logger *zap.Logger) *SimulatedProvider {
	return &SimulatedProvider{opts: opts, logger: logger}
}

// Authorize simulates registering a payment with the provider and returns a
// mock reference in the processor's "pi_" format.
func (s *SimulatedProvider) Authorize(ctx context.Context, amount decimal.Decimal, currency, customerEmail string) (string, error) {
	if err := s.sleep(ctx); err != nil {
		return "", err
	}

	if rand.Float64() < s.opts.AuthorizeFailRate {
		s.logger.Warn("[SIM PROVIDER] authorization failed",
			zap.String("currency", currency),
			zap.String("amount", amount.String()),
		)
		return "", errors.New("provider temporarily unavailable")
	}

	ref := "pi_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:24]

	s.logger.Info("[SIM PROVIDER] payment authorized",
		zap.String("provider_reference", ref),
		zap.String("amount", amount.String()),
		zap.String("currency", currency),
		zap.String("customer_email", customerEmail),
	)

	return ref, nil
}

// Capture simulates capturing an authorized payment.
func (s *SimulatedProvider) Capture(ctx context.Context, providerRef, paymentMethodID string) error {
	if err := s.sleep(ctx); err != nil {
		return err
	}

	if rand.Float64() < s.opts.CaptureDeclineRate {
		s.logger.Warn("[SIM PROVIDER] capture declined",
			zap.String("provider_reference", providerRef),
			zap.String("payment_method_id", paymentMethodID),
		)
		return fmt.Errorf("%w: card declined", ErrDeclined)
	}

	s.logger.Info("[SIM PROVIDER] payment captured",
		zap.String("provider_reference", providerRef),
		zap.String("payment_method_id", paymentMethodID),
	)
	return nil
}

// Healthy reports simulated provider reachability.
func (s *SimulatedProvider) Healthy(ctx context.Context) bool {
	return true
}

func (s *SimulatedProvider) sleep(ctx context.Context) error {
	if s.opts.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.opts.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
