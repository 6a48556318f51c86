package printer

import (
	"errors"
	"testing"
)

func TestEAN13CheckDigit(t *testing.T) {
	cases := map[string]int{
		"400638133393": 1,
		"590123412345": 7,
		"000000000000": 0,
	}
	for in, want := range cases {
		got, err := EAN13CheckDigit(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: got %d, want %d", in, got, want)
		}
	}
}

func TestCompleteEAN13RejectsBadCheckDigit(t *testing.T) {
	if _, err := CompleteEAN13("4006381333932"); !errors.Is(err, ErrInvalidEAN13) {
		t.Fatalf("expected ErrInvalidEAN13, got %v", err)
	}
}

func TestProductBarcode(t *testing.T) {
	code, err := ProductBarcode(42)
	if err != nil {
		t.Fatalf("ProductBarcode: %v", err)
	}
	if len(code) != 13 || code[:12] != "620100100042" {
		t.Fatalf("unexpected code %q", code)
	}
	if _, err := CompleteEAN13(code); err != nil {
		t.Fatalf("generated code does not validate: %v", err)
	}
	if _, err := ProductBarcode(100000); err == nil {
		t.Fatal("expected out of range error")
	}
}
