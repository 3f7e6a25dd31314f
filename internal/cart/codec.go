package cart

import (
	"encoding/json"
	"fmt"

	storeerrors "github.com/abgdnv/shopease/internal/errors"
)

// Encode serialises the state as a JSON array of line items.
func Encode(s State) ([]byte, error) {
	return json.Marshal(s.Items())
}

// Decode parses a value written by Encode. Values that are not a JSON array
// of line items, or that break the state invariants, fail with ErrPersistenceDecode.
func Decode(data []byte) (State, error) {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return State{}, fmt.Errorf("%w: %w", storeerrors.ErrPersistenceDecode, err)
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return State{}, fmt.Errorf("%w: line item without id", storeerrors.ErrPersistenceDecode)
		}
		if it.Quantity < 1 {
			return State{}, fmt.Errorf("%w: item %s has quantity %d", storeerrors.ErrPersistenceDecode, it.ProductID, it.Quantity)
		}
		if _, dup := seen[string(it.ProductID)]; dup {
			return State{}, fmt.Errorf("%w: duplicate item %s", storeerrors.ErrPersistenceDecode, it.ProductID)
		}
		seen[string(it.ProductID)] = struct{}{}
	}
	return State{items: items}, nil
}
