package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/pkg/apperror"
)

var (
	ErrEmptyReceipt           = errors.New("receipt has no items")
	ErrDeviceUnavailable      = errors.New("print device unavailable")
	ErrTransmissionTimeout    = errors.New("print transmission timed out")
	ErrAllStrategiesExhausted = errors.New("all print strategies failed")
)

// ExhaustedError carries every attempt when no strategy succeeded.
type ExhaustedError struct {
	Attempts []entity.PrintAttemptResult
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrAllStrategiesExhausted.Error() + ": no strategies configured"
	}
	reasons := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		reasons = append(reasons, fmt.Sprintf("%s: %s", a.Strategy, a.Reason))
	}
	return ErrAllStrategiesExhausted.Error() + ": " + strings.Join(reasons, "; ")
}

func (e *ExhaustedError) Unwrap() error {
	return ErrAllStrategiesExhausted
}

// PrintErrorToAppError maps print failures onto HTTP facing errors.
func PrintErrorToAppError(err error) *apperror.AppError {
	switch {
	case err == nil:
		return apperror.NewAppError(http.StatusInternalServerError, "Print failed")
	case errors.Is(err, ErrEmptyReceipt):
		return apperror.NewAppError(http.StatusUnprocessableEntity, "Receipt has no printable items")
	case errors.Is(err, ErrAllStrategiesExhausted):
		return apperror.NewAppError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrTransmissionTimeout):
		return apperror.NewAppError(http.StatusGatewayTimeout, err.Error())
	default:
		return apperror.GetAppError(err)
	}
}
