// Package resilience protege el almacén de inventario con un circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

var _ transfer.InventoryStore = (*BreakerStore)(nil)

// Valores por defecto del breaker.
const (
	DefaultFailureThreshold uint32 = 5
	DefaultTimeout                 = 30 * time.Second
	DefaultMaxRequests      uint32 = 1
)

// BreakerConfig configuración del circuit breaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32        // fallas consecutivas para abrir
	Timeout          time.Duration // tiempo en open antes de pasar a half-open
	MaxRequests      uint32        // peticiones permitidas en half-open
}

// StateObserver recibe los cambios de estado (0=closed, 1=half-open, 2=open).
type StateObserver interface {
	SetBreakerState(name string, state int)
}

// BreakerStore decora un transfer.InventoryStore. Con el breaker abierto las llamadas
// fallan de inmediato con domain.ErrStoreUnavailable; el reconciliador las registra
// como fallas por ítem y el traslado sigue reintentable.
type BreakerStore struct {
	inner transfer.InventoryStore
	cb    *gobreaker.CircuitBreaker
	name  string
}

// NewBreakerStore construye el decorador. observer puede ser nil.
func NewBreakerStore(inner transfer.InventoryStore, cfg BreakerConfig, log zerolog.Logger, observer StateObserver) *BreakerStore {
	if cfg.Name == "" {
		cfg.Name = "inventory-store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	threshold := cfg.FailureThreshold
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: callerError,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cambio de estado del circuit breaker")
			if observer != nil {
				observer.SetBreakerState(name, int(to))
			}
		},
	}
	if observer != nil {
		observer.SetBreakerState(cfg.Name, int(gobreaker.StateClosed))
	}
	return &BreakerStore{inner: inner, cb: gobreaker.NewCircuitBreaker(settings), name: cfg.Name}
}

// callerError cuenta como éxito los errores atribuibles al que llama; no indican
// que el almacén esté caído.
func callerError(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// State estado actual del breaker.
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerStore) GetStock(ctx context.Context, locationID, itemID string) (decimal.Decimal, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.GetStock(ctx, locationID, itemID)
	})
	if err != nil {
		return decimal.Zero, s.translate(err)
	}
	return out.(decimal.Decimal), nil
}

func (s *BreakerStore) Adjust(ctx context.Context, key entity.AdjustmentKey, delta decimal.Decimal) (decimal.Decimal, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Adjust(ctx, key, delta)
	})
	if err != nil {
		return decimal.Zero, s.translate(err)
	}
	return out.(decimal.Decimal), nil
}

func (s *BreakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: breaker %s: %v", domain.ErrStoreUnavailable, s.name, err)
	}
	return err
}
