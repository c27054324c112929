package fulfillment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Facade presents every fulfillment operation as a call that cannot fail from
// the caller's point of view. Gateway errors are logged, swallowed, and
// replaced with synthesized results flagged Degraded.
//
// One Facade belongs to exactly one conversation: the location and menu
// caches are private, append-only, and immutable for the conversation's
// lifetime.
type Facade struct {
	gateway Gateway

	locations map[string]Location
	menus     map[string][]MenuCategory
}

func NewFacade(gateway Gateway) *Facade {
	return &Facade{
		gateway:   gateway,
		locations: make(map[string]Location),
		menus:     make(map[string][]MenuCategory),
	}
}

// FindNearbyLocations normalizes the free-text address, asks the gateway for
// delivery stores, and caches each one by ID.
func (f *Facade) FindNearbyLocations(ctx context.Context, address string) LocationsResult {
	addr := NormalizeAddress(address)

	locations, err := f.gateway.FindNearbyLocations(ctx, addr)
	if err != nil {
		log.Warn().Err(err).Str("address", address).Msg("store locator failed, using fallback stores")
		return LocationsResult{
			Locations:   fallbackLocations(),
			Degradation: degraded(),
		}
	}

	for _, loc := range locations {
		f.cacheLocation(loc)
	}
	return LocationsResult{Locations: locations}
}

// GetLocationDetails serves cached locations without re-invoking the gateway.
func (f *Facade) GetLocationDetails(ctx context.Context, locationID string) LocationResult {
	if loc, ok := f.locations[locationID]; ok {
		return LocationResult{Location: loc}
	}

	loc, err := f.gateway.GetLocationDetails(ctx, locationID)
	if err != nil {
		log.Warn().Err(err).Str("location_id", locationID).Msg("store lookup failed, using fallback store")
		return LocationResult{
			Location:    fallbackLocation(locationID),
			Degradation: degraded(),
		}
	}

	f.cacheLocation(loc)
	return LocationResult{Location: loc}
}

// GetMenu serves the cached menu when present; a given location's menu is
// fetched from the gateway at most once per conversation.
func (f *Facade) GetMenu(ctx context.Context, locationID string) MenuResult {
	if categories, ok := f.menus[locationID]; ok {
		return MenuResult{Categories: categories}
	}

	categories, err := f.gateway.GetMenu(ctx, locationID)
	if err != nil {
		log.Warn().Err(err).Str("location_id", locationID).Msg("menu fetch failed, using fallback menu")
		return MenuResult{
			Categories:  FallbackMenu(),
			Degradation: degraded(),
		}
	}

	f.menus[locationID] = categories
	return MenuResult{Categories: categories}
}

// CachedMenus returns every menu fetched so far in this conversation.
func (f *Facade) CachedMenus() [][]MenuCategory {
	menus := make([][]MenuCategory, 0, len(f.menus))
	for _, categories := range f.menus {
		menus = append(menus, categories)
	}
	return menus
}

func (f *Facade) CreateOrder(ctx context.Context, customer Customer, locationID string) CreateOrderResult {
	orderID, err := f.gateway.CreateOrder(ctx, customer, locationID)
	if err != nil || strings.TrimSpace(orderID) == "" {
		log.Warn().Err(err).Str("location_id", locationID).Msg("create order failed, synthesizing order id")
		return CreateOrderResult{
			OrderID:     "ORD-" + uuid.NewString()[:8],
			Degradation: degraded(),
		}
	}
	return CreateOrderResult{OrderID: orderID}
}

func (f *Facade) ValidateOrder(ctx context.Context, draft OrderDraft) ValidationResult {
	valid, details, err := f.gateway.ValidateOrder(ctx, draft)
	if err != nil {
		log.Warn().Err(err).Msg("order validation failed, assuming valid")
		return ValidationResult{
			Valid:       true,
			Details:     "validation skipped",
			Degradation: degraded(),
		}
	}
	return ValidationResult{Valid: valid, Details: details}
}

// PriceOrder returns the authoritative breakdown when the gateway supplies
// one, otherwise the local estimate. lineTotals is the caller's sum of line
// item totals, used as the estimate's subtotal.
func (f *Facade) PriceOrder(ctx context.Context, draft OrderDraft, lineTotals float64) PriceResult {
	quote, err := f.gateway.PriceOrder(ctx, draft)
	if err != nil {
		log.Warn().Err(err).Msg("order pricing failed, using estimate formula")
		quote = EstimatePrice(lineTotals)
		return PriceResult{
			Subtotal:    quote.Subtotal,
			Tax:         quote.Tax,
			DeliveryFee: quote.DeliveryFee,
			Total:       quote.Total,
			Degradation: degraded(),
		}
	}
	return PriceResult{
		Subtotal:    quote.Subtotal,
		Tax:         quote.Tax,
		DeliveryFee: quote.DeliveryFee,
		Total:       quote.Total,
	}
}

func (f *Facade) PlaceOrder(ctx context.Context, draft OrderDraft, payment Payment) PlaceOrderResult {
	placement, err := f.gateway.PlaceOrder(ctx, draft, payment)
	if err != nil {
		log.Warn().Err(err).Msg("place order failed, synthesizing placement")
		return PlaceOrderResult{
			OrderID:               "ORD-" + uuid.NewString()[:8],
			EstimatedDeliveryTime: FallbackDeliveryWindow,
			Degradation:           degraded(),
		}
	}
	return PlaceOrderResult{
		OrderID:               placement.OrderID,
		TrackingURL:           placement.TrackingURL,
		EstimatedDeliveryTime: placement.EstimatedDeliveryTime,
	}
}

// ResolveItem looks a product code up in the conversation's cached menus,
// falling back to the built-in catalogue. The second return reports whether
// the code resolved at all.
func (f *Facade) ResolveItem(code string) (MenuItem, bool) {
	for _, categories := range f.menus {
		if item, ok := findItem(categories, code); ok {
			return item, true
		}
	}
	return findItem(FallbackMenu(), code)
}

func findItem(categories []MenuCategory, code string) (MenuItem, bool) {
	for _, category := range categories {
		for _, item := range category.Items {
			if item.Code == code {
				return item, true
			}
		}
	}
	return MenuItem{}, false
}

func (f *Facade) cacheLocation(loc Location) {
	if loc.ID == "" {
		return
	}
	// Cache entries are immutable for the conversation's lifetime.
	if _, ok := f.locations[loc.ID]; ok {
		return
	}
	f.locations[loc.ID] = loc
}

func degraded() Degradation {
	return Degradation{Degraded: true, Warning: fallbackWarning}
}
