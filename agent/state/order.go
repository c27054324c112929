package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	contractx "pieline/agent/contract"
	"pieline/fulfillment"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrEmptyOrder      = errors.New("order has no items")
	ErrAddressRequired = errors.New("delivery address is required")
)

// LineItem is one ordered product. Line items are never mutated in place;
// removal or replacement rewrites the list.
type LineItem struct {
	Code           string                       `json:"item_id"`
	Name           string                       `json:"name"`
	UnitPrice      float64                      `json:"price"`
	Quantity       int                          `json:"quantity"`
	Customizations []string                     `json:"customizations"`
	Options        map[string]map[string]string `json:"options,omitempty"`
	LineTotal      float64                      `json:"total"`
}

// FinalizedOrder is the snapshot returned by Finalize. It survives the
// post-finalization reset so the payment agent can look it up.
type FinalizedOrder struct {
	fulfillment.Degradation

	OrderID               string     `json:"order_id"`
	Items                 []LineItem `json:"items"`
	Subtotal              float64    `json:"subtotal"`
	Tax                   float64    `json:"tax"`
	DeliveryFee           float64    `json:"delivery_fee"`
	Total                 float64    `json:"total"`
	DeliveryAddress       string     `json:"delivery_address"`
	DeliveryInstructions  string     `json:"delivery_instructions,omitempty"`
	EstimatedDeliveryTime string     `json:"estimated_delivery_time"`
	CreatedAt             time.Time  `json:"created_at"`
}

type PaymentConfirmation struct {
	PaymentID     string    `json:"payment_id"`
	OrderID       string    `json:"order_id"`
	Status        string    `json:"status"`
	Method        string    `json:"payment_method"`
	Amount        float64   `json:"amount"`
	Tip           float64   `json:"tip"`
	Timestamp     time.Time `json:"timestamp"`
	ReceiptURL    string    `json:"receipt_url,omitempty"`
	TrackingURL   string    `json:"tracking_url,omitempty"`
	EstimatedTime string    `json:"estimated_delivery_time,omitempty"`
}

// OrderView is the read-only projection returned by View.
type OrderView struct {
	Items      []LineItem `json:"order_items"`
	Total      float64    `json:"order_total"`
	LocationID string     `json:"store_id,omitempty"`
	OrderID    string     `json:"order_id,omitempty"`
}

// ItemResolver resolves a product code against the conversation's cached
// menus. Satisfied by *fulfillment.Facade.
type ItemResolver interface {
	ResolveItem(code string) (fulfillment.MenuItem, bool)
}

// Order is the single shared aggregate for one conversation's in-progress
// order. All agents read and write it through the session; it is never shared
// across conversations.
type Order struct {
	Customer   *fulfillment.Customer `json:"customer,omitempty"`
	LocationID string                `json:"store_id,omitempty"`
	Items      []LineItem            `json:"items"`
	Total      float64               `json:"total"`
	OrderID    string                `json:"order_id,omitempty"`

	// Post-finalization records for payment-agent lookups.
	Finalized []FinalizedOrder               `json:"finalized,omitempty"`
	Payments  map[string]PaymentConfirmation `json:"payments,omitempty"`

	now contractx.Clock
}

func NewOrder() *Order {
	return &Order{
		Payments: make(map[string]PaymentConfirmation),
		now:      time.Now,
	}
}

// WithClock pins time generation, for tests.
func (o *Order) WithClock(clock contractx.Clock) *Order {
	if clock != nil {
		o.now = clock
	}
	return o
}

func (o *Order) SelectLocation(locationID string) {
	o.LocationID = locationID
}

// AddLineItem resolves the product code, appends a line item, and recomputes
// the running total from scratch. On ErrItemNotFound the order is unchanged.
func (o *Order) AddLineItem(resolver ItemResolver, code string, quantity int, customizations []string, options map[string]map[string]string) (LineItem, error) {
	if strings.TrimSpace(code) == "" {
		return LineItem{}, fmt.Errorf("%w: item code is required", contractx.ErrValidation)
	}
	if quantity < 1 {
		return LineItem{}, fmt.Errorf("%w: quantity must be at least 1", contractx.ErrValidation)
	}

	item, ok := resolver.ResolveItem(code)
	if !ok {
		return LineItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, code)
	}

	line := LineItem{
		Code:           item.Code,
		Name:           item.Name,
		UnitPrice:      item.Price,
		Quantity:       quantity,
		Customizations: append([]string(nil), customizations...),
		Options:        options,
		LineTotal:      round2(item.Price * float64(quantity)),
	}
	if line.Customizations == nil {
		line.Customizations = []string{}
	}

	o.Items = append(o.Items, line)
	o.recomputeTotal()
	return line, nil
}

// View is a pure read; it never mutates the order.
func (o *Order) View() OrderView {
	items := make([]LineItem, len(o.Items))
	copy(items, o.Items)
	return OrderView{
		Items:      items,
		Total:      o.Total,
		LocationID: o.LocationID,
		OrderID:    o.OrderID,
	}
}

// Finalize locks in the order: it requires at least one line item and a
// non-empty delivery address, runs create/validate/price through the facade
// (whose failures degrade rather than propagate), returns the finalized
// snapshot, and resets the in-progress items and total. The order identifier
// and snapshot persist for payment lookups.
func (o *Order) Finalize(ctx context.Context, facade *fulfillment.Facade, customer fulfillment.Customer, instructions string) (FinalizedOrder, error) {
	if len(o.Items) == 0 {
		return FinalizedOrder{}, fmt.Errorf("%w: add an item before finalizing", ErrEmptyOrder)
	}
	if strings.TrimSpace(customer.Address) == "" {
		return FinalizedOrder{}, ErrAddressRequired
	}

	o.Customer = &customer
	draft := o.draft(customer)

	created := facade.CreateOrder(ctx, customer, o.LocationID)
	validation := facade.ValidateOrder(ctx, draft)
	price := facade.PriceOrder(ctx, draft, o.Total)

	snapshot := FinalizedOrder{
		OrderID:               created.OrderID,
		Items:                 append([]LineItem(nil), o.Items...),
		Subtotal:              price.Subtotal,
		Tax:                   price.Tax,
		DeliveryFee:           price.DeliveryFee,
		Total:                 price.Total,
		DeliveryAddress:       customer.Address,
		DeliveryInstructions:  instructions,
		EstimatedDeliveryTime: fulfillment.FallbackDeliveryWindow,
		CreatedAt:             o.now().UTC(),
	}
	if created.Degraded || validation.Degraded || price.Degraded {
		snapshot.Degraded = true
		snapshot.Warning = firstWarning(created.Warning, validation.Warning, price.Warning)
	}
	if !validation.Valid {
		snapshot.Degraded = true
		snapshot.Warning = firstWarning(validation.Details, snapshot.Warning)
	}

	o.OrderID = created.OrderID
	o.Finalized = append(o.Finalized, snapshot)

	// Finalization is a boundary: the working items reset, history stays.
	o.Items = nil
	o.recomputeTotal()

	return snapshot, nil
}

// RecordPayment always succeeds with a synthesized confirmation; payment must
// never block on the external gateway. Amount defaults to the latest
// finalized total when not supplied.
func (o *Order) RecordPayment(method string, amount, tip float64) PaymentConfirmation {
	latest, ok := o.latestFinalized()
	if amount <= 0 {
		if ok {
			amount = latest.Total
		} else {
			amount = fulfillment.EstimatePrice(0).Total
		}
	}

	confirmation := PaymentConfirmation{
		PaymentID: "PAY-" + uuid.NewString()[:8],
		OrderID:   o.OrderID,
		Status:    "completed",
		Method:    method,
		Amount:    round2(amount + tip),
		Tip:       tip,
		Timestamp: o.now().UTC(),
	}
	if ok {
		confirmation.EstimatedTime = latest.EstimatedDeliveryTime
	}
	confirmation.ReceiptURL = "https://receipts.pieline.dev/" + confirmation.PaymentID

	if o.Payments == nil {
		o.Payments = make(map[string]PaymentConfirmation)
	}
	o.Payments[confirmation.PaymentID] = confirmation
	return confirmation
}

// UpdatePayment re-records a confirmation enriched after the fact (e.g. with
// a tracking URL from order placement).
func (o *Order) UpdatePayment(confirmation PaymentConfirmation) {
	if o.Payments == nil {
		o.Payments = make(map[string]PaymentConfirmation)
	}
	o.Payments[confirmation.PaymentID] = confirmation
}

// Summary returns the finalized snapshot for an order identifier.
func (o *Order) Summary(orderID string) (FinalizedOrder, bool) {
	for i := len(o.Finalized) - 1; i >= 0; i-- {
		if o.Finalized[i].OrderID == orderID {
			return o.Finalized[i], true
		}
	}
	return FinalizedOrder{}, false
}

// Confirmation returns a recorded payment by identifier.
func (o *Order) Confirmation(paymentID string) (PaymentConfirmation, bool) {
	c, ok := o.Payments[paymentID]
	return c, ok
}

func (o *Order) latestFinalized() (FinalizedOrder, bool) {
	if len(o.Finalized) == 0 {
		return FinalizedOrder{}, false
	}
	return o.Finalized[len(o.Finalized)-1], true
}

// recomputeTotal rebuilds the running total from the line items. The total is
// never adjusted incrementally; drift is an implementation bug.
func (o *Order) recomputeTotal() {
	total := 0.0
	for _, item := range o.Items {
		total += item.LineTotal
	}
	o.Total = round2(total)
}

func (o *Order) draft(customer fulfillment.Customer) fulfillment.OrderDraft {
	draft := fulfillment.OrderDraft{
		Customer:   customer,
		LocationID: o.LocationID,
	}
	for _, item := range o.Items {
		draft.Items = append(draft.Items, fulfillment.DraftItem{
			Code:     item.Code,
			Quantity: item.Quantity,
			Options:  item.Options,
		})
	}
	return draft
}

func firstWarning(warnings ...string) string {
	for _, w := range warnings {
		if strings.TrimSpace(w) != "" {
			return w
		}
	}
	return ""
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
