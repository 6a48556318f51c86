package printer

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidEAN13 = errors.New("printer: invalid EAN-13 code")

// EAN13CheckDigit computes the check digit for a 12 digit payload using
// alternating 1/3 weights.
func EAN13CheckDigit(digits string) (int, error) {
	if len(digits) != 12 || !allDigits(digits) {
		return 0, fmt.Errorf("%w: want 12 digits, got %q", ErrInvalidEAN13, digits)
	}
	sum := 0
	for i, c := range digits {
		n := int(c - '0')
		if i%2 == 1 {
			n *= 3
		}
		sum += n
	}
	return (10 - sum%10) % 10, nil
}

// CompleteEAN13 appends the check digit to a 12 digit payload, or validates
// a 13 digit code.
func CompleteEAN13(code string) (string, error) {
	switch len(code) {
	case 12:
		check, err := EAN13CheckDigit(code)
		if err != nil {
			return "", err
		}
		return code + strconv.Itoa(check), nil
	case 13:
		check, err := EAN13CheckDigit(code[:12])
		if err != nil {
			return "", err
		}
		if int(code[12]-'0') != check {
			return "", fmt.Errorf("%w: bad check digit in %q", ErrInvalidEAN13, code)
		}
		return code, nil
	default:
		return "", fmt.Errorf("%w: length %d", ErrInvalidEAN13, len(code))
	}
}

// ProductBarcode builds an in-store EAN-13 from a numeric product id:
// prefix 620, manufacturer 1001, the id zero padded to 5 digits, then the check digit.
func ProductBarcode(productID int) (string, error) {
	if productID < 0 || productID > 99999 {
		return "", fmt.Errorf("%w: product id %d out of range", ErrInvalidEAN13, productID)
	}
	return CompleteEAN13(fmt.Sprintf("6201001%05d", productID))
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
