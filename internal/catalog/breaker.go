package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-browser/internal/domain"
	"github.com/kahvecikaan/catalog-browser/internal/metrics"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for the catalog circuit breaker
type BreakerConfig struct {
	// Name identifies this breaker in metrics and logs
	Name string

	// MaxRequests allowed in the half-open state
	MaxRequests uint32

	// Interval of the closed state after which counts are cleared
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open
	Timeout time.Duration

	// FailureRatio that trips the breaker once MinRequests is reached
	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// stateToFloat maps gobreaker states to prometheus gauge values
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func newBreaker(logger hclog.Logger, cfg BreakerConfig) *gobreaker.CircuitBreaker[[]byte] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// a missing product or an abandoned caller says nothing about catalog health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrProductNotFound) ||
				errors.Is(err, context.Canceled)
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)
	return gobreaker.NewCircuitBreaker[[]byte](settings)
}

// newBreakers creates one breaker per operation, named "<name>-<op>"
func newBreakers(logger hclog.Logger, cfg BreakerConfig, ops ...string) map[string]*gobreaker.CircuitBreaker[[]byte] {
	breakers := make(map[string]*gobreaker.CircuitBreaker[[]byte], len(ops))
	for _, op := range ops {
		opCfg := cfg
		opCfg.Name = cfg.Name + "-" + op
		breakers[op] = newBreaker(logger, opCfg)
	}
	return breakers
}
