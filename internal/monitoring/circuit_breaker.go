package monitoring

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/shieldtip/shieldtip-backend/internal/shieldedrpc"
	"github.com/shieldtip/shieldtip-backend/internal/swaprpc"
	"github.com/shieldtip/shieldtip-backend/internal/utils/logger"
)

// CircuitBreakerConfig tunes when a collaborator is considered down.
type CircuitBreakerConfig struct {
	MaxRequests                 uint32
	Interval                    time.Duration
	Timeout                     time.Duration
	ConsecutiveFailureThreshold int
}

var DefaultCircuitBreakerConfig = CircuitBreakerConfig{
	MaxRequests:                 3,
	Interval:                    1 * time.Minute,
	Timeout:                     30 * time.Second,
	ConsecutiveFailureThreshold: 5,
}

func newBreaker(name string, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state change", map[string]string{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			if metrics != nil {
				metrics.UpdateCircuitBreakerState(name, to)
			}
		},
	})
}

// CircuitBreakerSwapRPC wraps swaprpc.ISwapRPC so a failing swap service
// sheds load instead of queueing doomed calls.
type CircuitBreakerSwapRPC struct {
	wrapped        swaprpc.ISwapRPC
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
}

func NewCircuitBreakerSwapRPC(wrapped swaprpc.ISwapRPC, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) swaprpc.ISwapRPC {
	return &CircuitBreakerSwapRPC{
		wrapped:        wrapped,
		circuitBreaker: newBreaker("swap_rpc", config, metrics, logger),
		metrics:        metrics,
	}
}

func (cb *CircuitBreakerSwapRPC) Quote(ctx context.Context, fromToken string, amountIn decimal.Decimal, toAsset string) (*swaprpc.Route, error) {
	start := time.Now()
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.wrapped.Quote(ctx, fromToken, amountIn, toAsset)
	})
	if cb.metrics != nil {
		cb.metrics.ObserveCall("swap_rpc", "quote", start, err)
	}
	if err != nil {
		return nil, err
	}

	return result.(*swaprpc.Route), nil
}

func (cb *CircuitBreakerSwapRPC) Execute(ctx context.Context, route *swaprpc.Route) (*swaprpc.ExecuteResult, error) {
	start := time.Now()
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.wrapped.Execute(ctx, route)
	})
	if cb.metrics != nil {
		cb.metrics.ObserveCall("swap_rpc", "execute", start, err)
	}
	if err != nil {
		return nil, err
	}

	return result.(*swaprpc.ExecuteResult), nil
}

// CircuitBreakerShieldedRPC wraps shieldedrpc.IShieldedRPC the same way.
type CircuitBreakerShieldedRPC struct {
	wrapped        shieldedrpc.IShieldedRPC
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
}

func NewCircuitBreakerShieldedRPC(wrapped shieldedrpc.IShieldedRPC, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) shieldedrpc.IShieldedRPC {
	return &CircuitBreakerShieldedRPC{
		wrapped:        wrapped,
		circuitBreaker: newBreaker("shielded_rpc", config, metrics, logger),
		metrics:        metrics,
	}
}

func (cb *CircuitBreakerShieldedRPC) Submit(ctx context.Context, txHash, recipientAddress, memo string) (string, error) {
	start := time.Now()
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.wrapped.Submit(ctx, txHash, recipientAddress, memo)
	})
	if cb.metrics != nil {
		cb.metrics.ObserveCall("shielded_rpc", "submit", start, err)
	}
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (cb *CircuitBreakerShieldedRPC) Confirmations(ctx context.Context, deliveryID string) (*shieldedrpc.DeliveryStatus, error) {
	start := time.Now()
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.wrapped.Confirmations(ctx, deliveryID)
	})
	if cb.metrics != nil {
		cb.metrics.ObserveCall("shielded_rpc", "confirmations", start, err)
	}
	if err != nil {
		return nil, err
	}

	return result.(*shieldedrpc.DeliveryStatus), nil
}
