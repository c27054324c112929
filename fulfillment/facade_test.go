package fulfillment

import (
	"context"
	"errors"
	"testing"
)

// countingGateway records how many times each operation was invoked and fails
// every call when broken is set.
type countingGateway struct {
	broken bool

	findCalls   int
	detailCalls int
	menuCalls   int
	createCalls int
	priceCalls  int
	placeCalls  int
}

var errGatewayDown = errors.New("gateway down")

func (g *countingGateway) FindNearbyLocations(ctx context.Context, addr Address) ([]Location, error) {
	g.findCalls++
	if g.broken {
		return nil, errGatewayDown
	}
	return []Location{
		{ID: "live1", Name: "Live Store One", Address: "1 First St"},
		{ID: "live2", Name: "Live Store Two", Address: "2 Second St"},
	}, nil
}

func (g *countingGateway) GetLocationDetails(ctx context.Context, locationID string) (Location, error) {
	g.detailCalls++
	if g.broken {
		return Location{}, errGatewayDown
	}
	return Location{ID: locationID, Name: "Live Store"}, nil
}

func (g *countingGateway) GetMenu(ctx context.Context, locationID string) ([]MenuCategory, error) {
	g.menuCalls++
	if g.broken {
		return nil, errGatewayDown
	}
	return []MenuCategory{
		{Name: "Pizzas", Items: []MenuItem{{Code: "live-pizza", Name: "Live Pizza", Price: 10.00}}},
	}, nil
}

func (g *countingGateway) CreateOrder(ctx context.Context, customer Customer, locationID string) (string, error) {
	g.createCalls++
	if g.broken {
		return "", errGatewayDown
	}
	return "ORD-live", nil
}

func (g *countingGateway) ValidateOrder(ctx context.Context, draft OrderDraft) (bool, string, error) {
	if g.broken {
		return false, "", errGatewayDown
	}
	return true, "ok", nil
}

func (g *countingGateway) PriceOrder(ctx context.Context, draft OrderDraft) (PriceQuote, error) {
	g.priceCalls++
	if g.broken {
		return PriceQuote{}, errGatewayDown
	}
	return PriceQuote{Subtotal: 20, Tax: 2, DeliveryFee: 3, Total: 25}, nil
}

func (g *countingGateway) PlaceOrder(ctx context.Context, draft OrderDraft, payment Payment) (Placement, error) {
	g.placeCalls++
	if g.broken {
		return Placement{}, errGatewayDown
	}
	return Placement{OrderID: "ORD-live", TrackingURL: "https://track/ORD-live", EstimatedDeliveryTime: "25 minutes"}, nil
}

func TestGetMenuFetchesAtMostOncePerLocation(t *testing.T) {
	t.Parallel()

	gw := &countingGateway{}
	facade := NewFacade(gw)

	first := facade.GetMenu(context.Background(), "live1")
	second := facade.GetMenu(context.Background(), "live1")

	if gw.menuCalls != 1 {
		t.Fatalf("expected exactly one gateway menu fetch, got %d", gw.menuCalls)
	}
	if first.Degraded || second.Degraded {
		t.Fatal("healthy gateway results must not be degraded")
	}
	if len(second.Categories) != 1 || second.Categories[0].Items[0].Code != "live-pizza" {
		t.Fatalf("cached menu does not match fetched menu: %+v", second.Categories)
	}
}

func TestGetLocationDetailsServedFromCache(t *testing.T) {
	t.Parallel()

	gw := &countingGateway{}
	facade := NewFacade(gw)

	found := facade.FindNearbyLocations(context.Background(), "2 Portola Plaza, Monterey, CA, 93940")
	if found.Degraded {
		t.Fatal("healthy locator result must not be degraded")
	}
	if len(found.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(found.Locations))
	}

	details := facade.GetLocationDetails(context.Background(), "live1")
	if gw.detailCalls != 0 {
		t.Fatalf("expected cached detail lookup, gateway called %d times", gw.detailCalls)
	}
	if details.Location.Name != "Live Store One" {
		t.Fatalf("unexpected cached location: %+v", details.Location)
	}
}

func TestFindNearbyLocationsFallsBack(t *testing.T) {
	t.Parallel()

	facade := NewFacade(&countingGateway{broken: true})

	result := facade.FindNearbyLocations(context.Background(), "500 Main St")
	if !result.Degraded {
		t.Fatal("expected degraded result when gateway fails")
	}
	if result.Warning == "" {
		t.Fatal("degraded result must carry a warning")
	}
	if len(result.Locations) != 3 {
		t.Fatalf("expected 3 fallback stores, got %d", len(result.Locations))
	}
	if result.Locations[0].Name != "Pizza Paradise" {
		t.Fatalf("unexpected first fallback store: %+v", result.Locations[0])
	}
}

func TestGetMenuFallsBack(t *testing.T) {
	t.Parallel()

	facade := NewFacade(&countingGateway{broken: true})

	result := facade.GetMenu(context.Background(), "store1")
	if !result.Degraded {
		t.Fatal("expected degraded result when gateway fails")
	}
	if len(result.Categories) != 3 {
		t.Fatalf("expected 3 fallback categories, got %d", len(result.Categories))
	}
}

func TestValidateOrderNeverFails(t *testing.T) {
	t.Parallel()

	facade := NewFacade(&countingGateway{broken: true})

	result := facade.ValidateOrder(context.Background(), OrderDraft{})
	if !result.Degraded {
		t.Fatal("expected degraded validation when gateway fails")
	}
	if !result.Valid {
		t.Fatal("degraded validation must not block the order")
	}
}

func TestPriceOrderUsesEstimateOnFailure(t *testing.T) {
	t.Parallel()

	facade := NewFacade(&countingGateway{broken: true})

	result := facade.PriceOrder(context.Background(), OrderDraft{}, 25.98)
	if !result.Degraded {
		t.Fatal("expected degraded price when gateway fails")
	}
	if result.Subtotal != 25.98 {
		t.Fatalf("estimate subtotal: got %.2f, want 25.98", result.Subtotal)
	}
	if result.Tax != 2.60 {
		t.Fatalf("estimate tax: got %.2f, want 2.60", result.Tax)
	}
	if result.DeliveryFee != 3.99 {
		t.Fatalf("estimate delivery fee: got %.2f, want 3.99", result.DeliveryFee)
	}
	if result.Total != 32.57 {
		t.Fatalf("estimate total: got %.2f, want 32.57", result.Total)
	}
}

func TestEstimatePriceEmptyOrder(t *testing.T) {
	t.Parallel()

	quote := EstimatePrice(0)
	if quote.Subtotal != 25.00 {
		t.Fatalf("empty-order subtotal: got %.2f, want 25.00", quote.Subtotal)
	}
	if quote.Tax != 2.50 {
		t.Fatalf("empty-order tax: got %.2f, want 2.50", quote.Tax)
	}
	if quote.Total != 31.49 {
		t.Fatalf("empty-order total: got %.2f, want 31.49", quote.Total)
	}
}

func TestCreateOrderSynthesizesID(t *testing.T) {
	t.Parallel()

	facade := NewFacade(&countingGateway{broken: true})

	result := facade.CreateOrder(context.Background(), Customer{Address: "500 Main St"}, "store1")
	if !result.Degraded {
		t.Fatal("expected degraded create when gateway fails")
	}
	if len(result.OrderID) != len("ORD-")+8 {
		t.Fatalf("unexpected synthesized order id: %q", result.OrderID)
	}
}

func TestPlaceOrderSynthesizesPlacement(t *testing.T) {
	t.Parallel()

	facade := NewFacade(&countingGateway{broken: true})

	result := facade.PlaceOrder(context.Background(), OrderDraft{}, Payment{Amount: 30})
	if !result.Degraded {
		t.Fatal("expected degraded placement when gateway fails")
	}
	if result.EstimatedDeliveryTime != FallbackDeliveryWindow {
		t.Fatalf("unexpected delivery window: %q", result.EstimatedDeliveryTime)
	}
}

func TestResolveItemPrefersCachedMenus(t *testing.T) {
	t.Parallel()

	gw := &countingGateway{}
	facade := NewFacade(gw)
	facade.GetMenu(context.Background(), "live1")

	item, ok := facade.ResolveItem("live-pizza")
	if !ok {
		t.Fatal("expected cached menu item to resolve")
	}
	if item.Price != 10.00 {
		t.Fatalf("unexpected item price: %.2f", item.Price)
	}
}

func TestResolveItemFallsBackToCatalogue(t *testing.T) {
	t.Parallel()

	facade := NewFacade(&countingGateway{})

	item, ok := facade.ResolveItem("pizza1")
	if !ok {
		t.Fatal("expected catalogue fallback to resolve pizza1")
	}
	if item.Name != "Margherita" || item.Price != 12.99 {
		t.Fatalf("unexpected catalogue item: %+v", item)
	}

	if _, ok := facade.ResolveItem("no-such-item"); ok {
		t.Fatal("unknown code must not resolve")
	}
}
