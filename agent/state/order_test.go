package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"pieline/fulfillment"
)

// brokenGateway fails every call so the facade always degrades.
type brokenGateway struct{}

var errDown = errors.New("platform down")

func (brokenGateway) FindNearbyLocations(ctx context.Context, addr fulfillment.Address) ([]fulfillment.Location, error) {
	return nil, errDown
}

func (brokenGateway) GetLocationDetails(ctx context.Context, locationID string) (fulfillment.Location, error) {
	return fulfillment.Location{}, errDown
}

func (brokenGateway) GetMenu(ctx context.Context, locationID string) ([]fulfillment.MenuCategory, error) {
	return nil, errDown
}

func (brokenGateway) CreateOrder(ctx context.Context, customer fulfillment.Customer, locationID string) (string, error) {
	return "", errDown
}

func (brokenGateway) ValidateOrder(ctx context.Context, draft fulfillment.OrderDraft) (bool, string, error) {
	return false, "", errDown
}

func (brokenGateway) PriceOrder(ctx context.Context, draft fulfillment.OrderDraft) (fulfillment.PriceQuote, error) {
	return fulfillment.PriceQuote{}, errDown
}

func (brokenGateway) PlaceOrder(ctx context.Context, draft fulfillment.OrderDraft, payment fulfillment.Payment) (fulfillment.Placement, error) {
	return fulfillment.Placement{}, errDown
}

func newTestFacade() *fulfillment.Facade {
	return fulfillment.NewFacade(brokenGateway{})
}

func TestAddLineItemRecomputesTotal(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	facade := newTestFacade()

	line, err := order.AddLineItem(facade, "pizza1", 2, []string{"Extra Cheese"}, nil)
	if err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	if line.LineTotal != 25.98 {
		t.Fatalf("line total: got %.2f, want 25.98", line.LineTotal)
	}
	if order.Total != 25.98 {
		t.Fatalf("order total: got %.2f, want 25.98", order.Total)
	}

	if _, err := order.AddLineItem(facade, "side1", 1, nil, nil); err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	if order.Total != 31.97 {
		t.Fatalf("order total after second item: got %.2f, want 31.97", order.Total)
	}

	want := 0.0
	for _, item := range order.Items {
		want += item.LineTotal
	}
	if order.Total != want {
		t.Fatalf("total %.2f drifted from line item sum %.2f", order.Total, want)
	}
}

func TestAddLineItemUnknownCodeLeavesOrderUnchanged(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	facade := newTestFacade()

	if _, err := order.AddLineItem(facade, "pizza1", 1, nil, nil); err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	before := order.View()

	_, err := order.AddLineItem(facade, "no-such-code", 1, nil, nil)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	after := order.View()
	if len(after.Items) != len(before.Items) || after.Total != before.Total {
		t.Fatalf("failed add mutated the order: before %+v, after %+v", before, after)
	}
}

func TestAddLineItemRejectsBadQuantity(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	if _, err := order.AddLineItem(newTestFacade(), "pizza1", 0, nil, nil); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestViewDoesNotExposeInternalSlice(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	facade := newTestFacade()
	if _, err := order.AddLineItem(facade, "pizza1", 1, nil, nil); err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}

	view := order.View()
	view.Items[0].Quantity = 99

	if order.Items[0].Quantity != 1 {
		t.Fatal("mutating the view changed the order")
	}
}

func TestFinalizeRequiresItemsAndAddress(t *testing.T) {
	t.Parallel()

	facade := newTestFacade()
	ctx := context.Background()

	order := NewOrder()
	_, err := order.Finalize(ctx, facade, fulfillment.Customer{Address: "500 Main St"}, "")
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}

	if _, err := order.AddLineItem(facade, "pizza1", 1, nil, nil); err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	_, err = order.Finalize(ctx, facade, fulfillment.Customer{}, "")
	if !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired, got %v", err)
	}
}

func TestFinalizeDegradesAndResets(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	order := NewOrder().WithClock(func() time.Time { return fixed })
	facade := newTestFacade()
	ctx := context.Background()

	if _, err := order.AddLineItem(facade, "pizza1", 2, nil, nil); err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}

	snapshot, err := order.Finalize(ctx, facade, fulfillment.Customer{Address: "2 Portola Plaza, Monterey, CA, 93940"}, "ring twice")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if !snapshot.Degraded {
		t.Fatal("expected degraded snapshot with unreachable platform")
	}
	if snapshot.OrderID == "" {
		t.Fatal("finalized snapshot must carry an order id")
	}
	if snapshot.Subtotal != 25.98 || snapshot.Total != 32.57 {
		t.Fatalf("estimate breakdown: got subtotal %.2f total %.2f", snapshot.Subtotal, snapshot.Total)
	}
	if snapshot.DeliveryInstructions != "ring twice" {
		t.Fatalf("unexpected instructions: %q", snapshot.DeliveryInstructions)
	}
	if !snapshot.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected created at: %v", snapshot.CreatedAt)
	}

	// Finalization resets the working order but keeps history.
	if len(order.Items) != 0 || order.Total != 0 {
		t.Fatalf("order not reset: items=%d total=%.2f", len(order.Items), order.Total)
	}
	if order.OrderID != snapshot.OrderID {
		t.Fatalf("order id not retained: %q vs %q", order.OrderID, snapshot.OrderID)
	}

	got, ok := order.Summary(snapshot.OrderID)
	if !ok {
		t.Fatal("finalized snapshot not found by Summary")
	}
	if got.Total != snapshot.Total {
		t.Fatalf("summary total mismatch: %.2f vs %.2f", got.Total, snapshot.Total)
	}
}

func TestRecordPaymentDefaultsToFinalizedTotal(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	facade := newTestFacade()
	ctx := context.Background()

	if _, err := order.AddLineItem(facade, "pizza1", 2, nil, nil); err != nil {
		t.Fatalf("AddLineItem: %v", err)
	}
	preTipTotal := order.Total

	snapshot, err := order.Finalize(ctx, facade, fulfillment.Customer{Address: "500 Main St"}, "")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	confirmation := order.RecordPayment("credit_card", 0, 2.00)
	if confirmation.Status != "completed" {
		t.Fatalf("unexpected status: %q", confirmation.Status)
	}
	if confirmation.Amount != 34.57 {
		t.Fatalf("payment amount: got %.2f, want 34.57", confirmation.Amount)
	}
	if confirmation.Amount < preTipTotal {
		t.Fatalf("payment amount %.2f below pre-tip order total %.2f", confirmation.Amount, preTipTotal)
	}
	if confirmation.OrderID != snapshot.OrderID {
		t.Fatalf("confirmation order id: %q vs %q", confirmation.OrderID, snapshot.OrderID)
	}

	got, ok := order.Confirmation(confirmation.PaymentID)
	if !ok {
		t.Fatal("recorded payment not found by Confirmation")
	}
	if got.Amount != confirmation.Amount {
		t.Fatalf("confirmation lookup mismatch: %+v vs %+v", got, confirmation)
	}
}

func TestRecordPaymentWithoutFinalizedOrder(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	confirmation := order.RecordPayment("cash", 0, 0)
	if confirmation.Amount != 31.49 {
		t.Fatalf("expected empty-order estimate 31.49, got %.2f", confirmation.Amount)
	}
}

func TestSummaryUnknownOrder(t *testing.T) {
	t.Parallel()

	order := NewOrder()
	if _, ok := order.Summary("ORD-nope"); ok {
		t.Fatal("unknown order id must not resolve")
	}
}
