package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/pkg/printer"
)

const defaultStrategyTimeout = 10 * time.Second

// PrintDocument is something the dispatcher can print in any of the
// formats its strategies need.
type PrintDocument interface {
	Kind() string
	Reference() string
	EscPos() []byte
	PlainText() string
	HTML() string
}

// StrategyOutcome is what a strategy reports back to the dispatcher.
type StrategyOutcome struct {
	Target  entity.DeviceTarget
	Warning string
	Err     error
}

// PrintStrategy is one transport in the fallback chain.
type PrintStrategy interface {
	Kind() enum.PrintStrategy
	Timeout() time.Duration
	Attempt(ctx context.Context, doc PrintDocument) StrategyOutcome
}

// PrintDispatcher tries strategies in order until one succeeds.
// It does not serialize jobs; callers hold the device lock.
type PrintDispatcher struct {
	strategies []PrintStrategy
	logger     *slog.Logger
}

func NewPrintDispatcher(strategies []PrintStrategy, logger *slog.Logger) *PrintDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrintDispatcher{strategies: strategies, logger: logger}
}

// Strategies returns the configured chain order.
func (d *PrintDispatcher) Strategies() []enum.PrintStrategy {
	kinds := make([]enum.PrintStrategy, 0, len(d.strategies))
	for _, s := range d.strategies {
		kinds = append(kinds, s.Kind())
	}
	return kinds
}

// Devices checks every directly addressed printer in the chain.
func (d *PrintDispatcher) Devices() []DeviceStatus {
	devices := []DeviceStatus{}
	for _, s := range d.strategies {
		if rc, ok := s.(reachabilityChecker); ok {
			if status, ok := rc.Reachability(); ok {
				devices = append(devices, status)
			}
		}
	}
	return devices
}

// Budget is the longest a full run of the chain can take.
func (d *PrintDispatcher) Budget() time.Duration {
	var total time.Duration
	for _, s := range d.strategies {
		timeout := s.Timeout()
		if timeout <= 0 {
			timeout = defaultStrategyTimeout
		}
		total += timeout
	}
	return total
}

// Dispatch runs the chain. Later strategies are never started once one
// succeeds; if all fail the result carries an *ExhaustedError.
func (d *PrintDispatcher) Dispatch(ctx context.Context, doc PrintDocument) entity.PrintResult {
	result := entity.PrintResult{Attempts: []entity.PrintAttemptResult{}}

	for _, s := range d.strategies {
		if ctx.Err() != nil {
			break
		}
		attempt := d.attempt(ctx, s, doc)
		result.Attempts = append(result.Attempts, attempt)

		if attempt.Success {
			d.logger.Info("print succeeded",
				"kind", doc.Kind(),
				"reference", doc.Reference(),
				"strategy", attempt.Strategy.String(),
				"target", attempt.Target,
				"duration_ms", attempt.DurationMS,
			)
			result.Success = true
			result.StrategyUsed = attempt.Strategy.String()
			return result
		}
		d.logger.Warn("print strategy failed",
			"kind", doc.Kind(),
			"reference", doc.Reference(),
			"strategy", attempt.Strategy.String(),
			"reason", attempt.Reason,
		)
	}

	exhausted := &ExhaustedError{Attempts: result.Attempts}
	if ctx.Err() != nil && len(result.Attempts) < len(d.strategies) {
		result.Err = fmt.Errorf("%w (cancelled: %v)", exhausted, ctx.Err())
	} else {
		result.Err = exhausted
	}
	result.Error = result.Err.Error()
	d.logger.Error("print failed on every strategy", "kind", doc.Kind(), "reference", doc.Reference(), "error", result.Error)
	return result
}

func (d *PrintDispatcher) attempt(parent context.Context, s PrintStrategy, doc PrintDocument) entity.PrintAttemptResult {
	timeout := s.Timeout()
	if timeout <= 0 {
		timeout = defaultStrategyTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan StrategyOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- StrategyOutcome{Err: fmt.Errorf("strategy panicked: %v", r)}
			}
		}()
		done <- s.Attempt(ctx, doc)
	}()

	var out StrategyOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		select {
		case out = <-done:
		default:
			// The strategy goroutine is abandoned; it owns its own cleanup.
			out = StrategyOutcome{Err: fmt.Errorf("%w after %s", ErrTransmissionTimeout, timeout)}
		}
	}

	attempt := entity.PrintAttemptResult{
		Strategy:   s.Kind(),
		Success:    out.Err == nil,
		Target:     out.Target.String(),
		Warning:    out.Warning,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if out.Err != nil {
		attempt.Err = classifyPrintError(out.Err)
		attempt.Reason = attempt.Err.Error()
	}
	return attempt
}

func classifyPrintError(err error) error {
	switch {
	case errors.Is(err, ErrTransmissionTimeout), errors.Is(err, ErrDeviceUnavailable):
		return err
	case errors.Is(err, printer.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTransmissionTimeout, err)
	case errors.Is(err, printer.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return err
}
