package rest

import (
	"github.com/abgdnv/shopease/internal/cart"
	"github.com/abgdnv/shopease/internal/catalog"
	"github.com/abgdnv/shopease/internal/handoff"
	"github.com/abgdnv/shopease/internal/notify"
	"github.com/abgdnv/shopease/internal/view"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingDto struct {
	Products    []catalog.Product   `json:"products"`
	Categories  []string            `json:"categories"`
	DisabledIDs []catalog.ProductID `json:"disabledIds"`
}

type DetailDto struct {
	Product  *catalog.Product `json:"product"`
	Disabled bool             `json:"disabled"`
}

type CartDto struct {
	Items      []cart.LineItem `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type QuantityDto struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type ReceiptDto struct {
	OrderID      uuid.UUID       `json:"orderId"`
	Link         string          `json:"link"`
	Message      string          `json:"message"`
	TotalItems   int             `json:"totalItems"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	RedirectInMs int64           `json:"redirectInMs"`
}

type CheckoutDto struct {
	Cart     CartDto     `json:"cart"`
	Complete bool        `json:"complete"`
	Receipt  *ReceiptDto `json:"receipt,omitempty"`
}

type SessionDto struct {
	ID     string         `json:"id"`
	Route  string         `json:"route"`
	Toasts []notify.Toast `json:"toasts"`
}

func toCartDto(s view.Summary) CartDto {
	return CartDto{Items: s.Items, TotalItems: s.TotalItems, TotalPrice: s.TotalPrice}
}

func toReceiptDto(r *handoff.Receipt) *ReceiptDto {
	if r == nil {
		return nil
	}
	return &ReceiptDto{
		OrderID:      r.OrderID,
		Link:         r.Link,
		Message:      r.Message,
		TotalItems:   r.TotalItems,
		TotalPrice:   r.TotalPrice,
		RedirectInMs: r.RedirectIn.Milliseconds(),
	}
}
