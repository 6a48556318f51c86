package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetAppError(t *testing.T) {
	wrapped := fmt.Errorf("print label: %w", NewBadRequestError("bad barcode"))
	if got := GetAppError(wrapped); got.Code != http.StatusBadRequest || got.Message != "bad barcode" {
		t.Errorf("got %+v", got)
	}
	if got := GetAppError(errors.New("boom")); got.Code != http.StatusInternalServerError {
		t.Errorf("plain errors should map to 500, got %d", got.Code)
	}
	if GetAppError(nil) != nil {
		t.Error("nil error should stay nil")
	}
	if !IsAppError(wrapped) || IsAppError(errors.New("x")) {
		t.Error("IsAppError mismatch")
	}
}
