// Package errors provides the error kinds shared by the storefront components.
package errors

import (
	"errors"
	"fmt"
)

// Catalog errors.
var ErrNetwork = errors.New("catalog service unreachable")
var ErrDecode = errors.New("catalog response malformed")
var ErrProductNotFound = errors.New("product not found")

// Checkout errors. ErrEmptyCart is a validation failure as well.
var ErrValidation = errors.New("validation failed")
var ErrEmptyCart = fmt.Errorf("cart is empty: %w", ErrValidation)

var ErrOverStock = errors.New("requested quantity exceeds stock")
var ErrCooldown = errors.New("add action is cooling down")

// ErrPersistenceDecode is logged by the cart store and never returned to callers.
var ErrPersistenceDecode = errors.New("stored cart could not be decoded")

var ErrSessionNotFound = errors.New("session not found")
