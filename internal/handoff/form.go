package handoff

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	storeerrors "github.com/abgdnv/shopease/internal/errors"
)

// ShippingForm is what the shopper enters at checkout.
type ShippingForm struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Phone    string `json:"phone,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Field returns the value of the named field, "" for unknown names.
func (f ShippingForm) Field(name string) string {
	switch name {
	case "fullName":
		return f.FullName
	case "email":
		return f.Email
	case "address":
		return f.Address
	case "phone":
		return f.Phone
	case "notes":
		return f.Notes
	default:
		return ""
	}
}

// Trimmed returns the form with surrounding whitespace removed from every field.
func (f ShippingForm) Trimmed() ShippingForm {
	return ShippingForm{
		FullName: strings.TrimSpace(f.FullName),
		Email:    strings.TrimSpace(f.Email),
		Address:  strings.TrimSpace(f.Address),
		Phone:    strings.TrimSpace(f.Phone),
		Notes:    strings.TrimSpace(f.Notes),
	}
}

// ValidationError lists the rejected form fields as field -> rule.
// It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := slices.Sorted(maps.Keys(e.Fields))
	return fmt.Sprintf("invalid shipping form: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return storeerrors.ErrValidation }
