package cart

import (
	"fmt"

	storeerrors "github.com/abgdnv/shopease/internal/errors"
)

// ClampQuantity limits requested to stock. Requests above stock return the
// clamped value together with an error wrapping ErrOverStock.
// The store accepts any quantity, callers clamp with this before mutating.
func ClampQuantity(requested, stock int) (int, error) {
	if stock < 0 {
		stock = 0
	}
	if requested > stock {
		return stock, fmt.Errorf("%w: requested %d, available %d", storeerrors.ErrOverStock, requested, stock)
	}
	return requested, nil
}
