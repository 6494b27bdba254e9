package notify

import (
	"errors"
	"route-planner-service/internal/platform/metrics"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// ErrDispatcherUnavailable is returned while the breaker is open.
var ErrDispatcherUnavailable = errors.New("dispatcher unavailable: circuit breaker is open")

type BreakerSettings struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// Breaker guards calls to the task queue.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewBreaker(st BreakerSettings) *Breaker {
	failureRatio := st.FailureRatio
	if failureRatio <= 0 {
		failureRatio = 0.5
	}
	minRequests := st.MinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	if st.Name == "" {
		st.Name = "notifier"
	}

	metrics.BreakerState.WithLabelValues(st.Name).Set(float64(gobreaker.StateClosed))

	gs := gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && ratio >= failureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(gs)}
}

func (b *Breaker) Execute(fn func() error) error {
	if b == nil || b.cb == nil {
		return fn()
	}

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrDispatcherUnavailable
	}
	return err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
