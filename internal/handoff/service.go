// Package handoff turns a cart and a shipping form into a pre-filled message
// for the shop's chat channel and resets the cart once the message is handed off.
package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/shopease/internal/cart"
	storeerrors "github.com/abgdnv/shopease/internal/errors"
	"github.com/abgdnv/shopease/pkg/messaging"
	"github.com/abgdnv/shopease/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

// DefaultRequiredFields are checked when Settings.RequiredFields is empty.
var DefaultRequiredFields = []string{"fullName", "email", "address"}

// Cart is the part of the cart store a handoff needs.
type Cart interface {
	Snapshot() cart.State
	Clear(ctx context.Context) cart.State
}

// Order is one checkout submission.
type Order struct {
	SessionID string
	Cart      Cart
	Form      ShippingForm
	// Redirect schedules navigation back to the catalog after the delay. May be nil.
	Redirect func(delay time.Duration)
}

// Receipt describes a completed handoff.
type Receipt struct {
	OrderID    uuid.UUID       `json:"orderId"`
	Link       string          `json:"link"`
	Message    string          `json:"message"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	RedirectIn time.Duration   `json:"-"`
}

type Settings struct {
	RequiredFields []string
	Recipient      string
	BaseURL        string
	RedirectDelay  time.Duration
}

// Service performs checkout handoffs. It is stateless and shared by all sessions.
type Service struct {
	settings  Settings
	validate  *validator.Validate
	opener    Opener
	publisher messaging.Publisher
	logger    *slog.Logger
	handoffs  metric.Int64Counter
	now       func() time.Time
}

func NewService(settings Settings, opener Opener, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if len(settings.RequiredFields) == 0 {
		settings.RequiredFields = DefaultRequiredFields
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	meter := otel.Meter("storefront")
	handoffs, err := meter.Int64Counter("orders_handed_off", metric.WithDescription("Total number of orders handed off to the chat channel"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_handed_off counter: %v", err))
	}
	return &Service{
		settings:  settings,
		validate:  validator.New(),
		opener:    opener,
		publisher: publisher,
		logger:    logger.With("component", "handoff"),
		handoffs:  handoffs,
		now:       time.Now,
	}
}

// Submit validates the order, hands the summary to the opener and clears the cart.
// An empty cart fails with ErrEmptyCart and a bad form with *ValidationError;
// in both cases nothing is opened and the cart is untouched. An opener failure
// also leaves the cart untouched.
func (s *Service) Submit(ctx context.Context, order Order) (*Receipt, error) {
	state := order.Cart.Snapshot()
	if state.IsEmpty() {
		s.logger.WarnContext(ctx, "Checkout rejected, cart is empty", "session_id", order.SessionID)
		return nil, storeerrors.ErrEmptyCart
	}

	form := order.Form.Trimmed()
	if err := s.validateForm(form); err != nil {
		s.logger.WarnContext(ctx, "Checkout rejected, invalid shipping form", "session_id", order.SessionID, "error", err)
		return nil, err
	}

	message := ComposeMessage(state, form)
	link := BuildLink(s.settings.BaseURL, s.settings.Recipient, message)
	if err := s.opener.Open(ctx, link); err != nil {
		s.logger.ErrorContext(ctx, "Failed to open handoff channel", "session_id", order.SessionID, "error", err)
		return nil, fmt.Errorf("failed to open handoff channel: %w", err)
	}

	receipt := &Receipt{
		OrderID:    uuid.New(),
		Link:       link,
		Message:    message,
		TotalItems: state.TotalItems(),
		TotalPrice: state.TotalPrice(),
		RedirectIn: s.settings.RedirectDelay,
	}

	order.Cart.Clear(ctx)
	if order.Redirect != nil {
		order.Redirect(s.settings.RedirectDelay)
	}

	s.publish(ctx, order.SessionID, state, receipt)
	s.handoffs.Add(ctx, 1)
	s.logger.InfoContext(ctx, "Order handed off", "session_id", order.SessionID, "order_id", receipt.OrderID,
		"items", receipt.TotalItems, "total", receipt.TotalPrice.StringFixed(2))
	return receipt, nil
}

func (s *Service) validateForm(form ShippingForm) error {
	fields := make(map[string]string)
	for _, name := range s.settings.RequiredFields {
		if err := s.validate.Var(form.Field(name), "required"); err != nil {
			fields[name] = "failed on rule: required"
		}
	}
	if _, missing := fields["email"]; !missing && form.Email != "" {
		if err := s.validate.Var(form.Email, "email"); err != nil {
			fields["email"] = "failed on rule: email"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// publish emits the handoff event. A failure is logged, the handoff already happened.
func (s *Service) publish(ctx context.Context, sessionID string, state cart.State, receipt *Receipt) {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	lines := make([]events.OrderLine, 0, state.Len())
	for _, it := range state.Items() {
		lines = append(lines, events.OrderLine{
			ProductID: it.ProductID.String(),
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		})
	}
	event := events.OrderHandedOffEvent{
		Carrier:     carrier,
		OrderID:     receipt.OrderID,
		SessionID:   sessionID,
		Lines:       lines,
		TotalItems:  receipt.TotalItems,
		TotalPrice:  receipt.TotalPrice,
		Link:        receipt.Link,
		HandedOffAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish OrderHandedOffEvent", "order_id", receipt.OrderID, "error", err)
	}
}
