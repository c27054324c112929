package tools

import (
	"context"
	"errors"
	"testing"

	contractx "pieline/agent/contract"
	statex "pieline/agent/state"
	"pieline/fulfillment"
)

type downGateway struct{}

var errPlatformDown = errors.New("platform down")

func (downGateway) FindNearbyLocations(ctx context.Context, addr fulfillment.Address) ([]fulfillment.Location, error) {
	return nil, errPlatformDown
}

func (downGateway) GetLocationDetails(ctx context.Context, locationID string) (fulfillment.Location, error) {
	return fulfillment.Location{}, errPlatformDown
}

func (downGateway) GetMenu(ctx context.Context, locationID string) ([]fulfillment.MenuCategory, error) {
	return nil, errPlatformDown
}

func (downGateway) CreateOrder(ctx context.Context, customer fulfillment.Customer, locationID string) (string, error) {
	return "", errPlatformDown
}

func (downGateway) ValidateOrder(ctx context.Context, draft fulfillment.OrderDraft) (bool, string, error) {
	return false, "", errPlatformDown
}

func (downGateway) PriceOrder(ctx context.Context, draft fulfillment.OrderDraft) (fulfillment.PriceQuote, error) {
	return fulfillment.PriceQuote{}, errPlatformDown
}

func (downGateway) PlaceOrder(ctx context.Context, draft fulfillment.OrderDraft, payment fulfillment.Payment) (fulfillment.Placement, error) {
	return fulfillment.Placement{}, errPlatformDown
}

func newTestSession() *statex.Session {
	return statex.NewSession(downGateway{})
}

func TestAddItemToOrderPassesOptionsThrough(t *testing.T) {
	t.Parallel()

	sess := newTestSession()
	result, err := AddItemToOrder(context.Background(), sess, map[string]any{
		"item_id":  "pizza2",
		"quantity": 1,
		"options": map[string]any{
			"Extra Cheese": map[string]any{"1/1": "C.5"},
		},
	})
	if err != nil {
		t.Fatalf("AddItemToOrder: %v", err)
	}

	body := result.(map[string]any)
	if body["success"] != true {
		t.Fatalf("unexpected payload: %+v", body)
	}
	line := body["added_item"].(statex.LineItem)
	if line.Options["Extra Cheese"]["1/1"] != "C.5" {
		t.Fatalf("option map not carried through: %+v", line.Options)
	}
	if sess.Order.Items[0].Options["Extra Cheese"]["1/1"] != "C.5" {
		t.Fatalf("option map not stored on the order: %+v", sess.Order.Items[0].Options)
	}
}

func TestGetMenuRequiresSelectedStore(t *testing.T) {
	t.Parallel()

	sess := newTestSession()
	_, err := GetMenu(context.Background(), sess, nil)
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation without a selected store, got %v", err)
	}

	sess.Order.SelectLocation("store2")
	result, err := GetMenu(context.Background(), sess, nil)
	if err != nil {
		t.Fatalf("GetMenu after selection: %v", err)
	}
	body := result.(map[string]any)
	if body["degraded"] != true {
		t.Fatal("expected degraded menu with platform down")
	}
	if len(body["customization_options"].([]string)) == 0 {
		t.Fatal("expected customization options alongside the menu")
	}
}

func TestProcessPaymentRejectsUnknownMethod(t *testing.T) {
	t.Parallel()

	sess := newTestSession()
	_, err := ProcessPayment(context.Background(), sess, map[string]any{
		"payment_method": "barter",
	})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for unsupported method, got %v", err)
	}
}

func TestGetOrderSummaryUnknownOrder(t *testing.T) {
	t.Parallel()

	sess := newTestSession()
	result, err := GetOrderSummary(context.Background(), sess, map[string]any{"order_id": "ORD-nope"})
	if err != nil {
		t.Fatalf("GetOrderSummary: %v", err)
	}
	body := result.(map[string]any)
	if body["success"] != false || body["code"] != "OrderNotFound" {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestGetPaymentConfirmationUnknownPayment(t *testing.T) {
	t.Parallel()

	sess := newTestSession()
	result, err := GetPaymentConfirmation(context.Background(), sess, map[string]any{"payment_id": "PAY-nope"})
	if err != nil {
		t.Fatalf("GetPaymentConfirmation: %v", err)
	}
	body := result.(map[string]any)
	if body["success"] != false || body["code"] != "PaymentNotFound" {
		t.Fatalf("unexpected payload: %+v", body)
	}
}
