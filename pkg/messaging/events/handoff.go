package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/shopease/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one cart line as it was handed off.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderHandedOffEvent is published after an order summary was handed to the external channel.
type OrderHandedOffEvent struct {
	Carrier     map[string]string `json:"carrier,omitempty"`
	OrderID     uuid.UUID         `json:"order_id"`
	SessionID   string            `json:"session_id"`
	Lines       []OrderLine       `json:"lines"`
	TotalItems  int               `json:"total_items"`
	TotalPrice  decimal.Decimal   `json:"total_price"`
	Link        string            `json:"link"`
	HandedOffAt time.Time         `json:"handed_off_at"`
}

func (o OrderHandedOffEvent) Subject() string {
	return messaging.OrdersHandedOffSubject
}

func (o OrderHandedOffEvent) Key() string {
	return o.OrderID.String()
}

func (o OrderHandedOffEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
