package utils

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct runs struct-tag validation against v.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

// ParseAtomicAmount parses an integer-in-string atomic token amount.
func ParseAtomicAmount(amount string) (uint64, error) {
	if amount == "" {
		return 0, fmt.Errorf("amount cannot be empty")
	}

	v, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid atomic amount %q: %w", amount, err)
	}

	return v, nil
}

// TruncateBody clips a response body for inclusion in error messages.
func TruncateBody(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
