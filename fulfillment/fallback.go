package fulfillment

// Synthesized data returned when the platform is unreachable or returns
// garbage. Shapes match the authoritative results so callers never branch on
// anything except the Degraded flag.

const (
	fallbackWarning = "fulfillment platform unavailable; showing estimated data"

	// Estimate formula constants, applied both when the gateway is
	// unreachable and when its price response is unparseable.
	estimateTaxRate       = 0.10
	estimateDeliveryFee   = 3.99
	estimateEmptySubtotal = 25.00

	// FallbackDeliveryWindow is quoted whenever the platform supplies no
	// estimate of its own.
	FallbackDeliveryWindow = "30-45 minutes"
)

func fallbackLocations() []Location {
	return []Location{
		{
			ID:                    "store1",
			Name:                  "Pizza Paradise",
			Address:               "123 Main St, Anytown, USA",
			Phone:                 "(555) 123-4567",
			Distance:              "0.5 miles",
			Hours:                 "10:00 AM - 10:00 PM",
			EstimatedDeliveryTime: "20-30 min",
		},
		{
			ID:                    "store2",
			Name:                  "Slice Haven",
			Address:               "456 Oak Ave, Anytown, USA",
			Phone:                 "(555) 234-5678",
			Distance:              "1.2 miles",
			Hours:                 "11:00 AM - 11:00 PM",
			EstimatedDeliveryTime: "25-35 min",
		},
		{
			ID:                    "store3",
			Name:                  "Dough Delights",
			Address:               "789 Pine Blvd, Anytown, USA",
			Phone:                 "(555) 345-6789",
			Distance:              "1.8 miles",
			Hours:                 "10:30 AM - 10:30 PM",
			EstimatedDeliveryTime: "30-40 min",
		},
	}
}

func fallbackLocation(locationID string) Location {
	for _, loc := range fallbackLocations() {
		if loc.ID == locationID {
			return loc
		}
	}
	loc := fallbackLocations()[0]
	loc.ID = locationID
	return loc
}

// FallbackMenu is the synthesized menu used when the platform cannot supply
// one. Also the catalogue of last resort when an order references a product
// code no cached menu knows about.
func FallbackMenu() []MenuCategory {
	return []MenuCategory{
		{
			Name: "Pizzas",
			Items: []MenuItem{
				{Code: "pizza1", Name: "Margherita", Description: "Classic pizza with tomato sauce, mozzarella, and basil", Price: 12.99, Category: "Pizzas"},
				{Code: "pizza2", Name: "Pepperoni", Description: "Pizza with tomato sauce, mozzarella, and pepperoni", Price: 14.99, Category: "Pizzas"},
				{Code: "pizza3", Name: "Vegetarian", Description: "Pizza with tomato sauce, mozzarella, bell peppers, onions, mushrooms, and olives", Price: 15.99, Category: "Pizzas"},
			},
		},
		{
			Name: "Sides",
			Items: []MenuItem{
				{Code: "side1", Name: "Garlic Bread", Description: "Freshly baked bread with garlic butter", Price: 5.99, Category: "Sides"},
				{Code: "side2", Name: "Chicken Wings", Description: "Spicy chicken wings with blue cheese dip", Price: 8.99, Category: "Sides"},
			},
		},
		{
			Name: "Drinks",
			Items: []MenuItem{
				{Code: "drink1", Name: "Soda", Description: "Choice of Coke, Sprite, or Fanta", Price: 2.99, Category: "Drinks"},
				{Code: "drink2", Name: "Bottled Water", Description: "500ml bottled water", Price: 1.99, Category: "Drinks"},
			},
		},
	}
}

// CustomizationOptions lists the human-readable customizations the menu agent
// may offer alongside the menu.
func CustomizationOptions() []string {
	return []string{
		"Extra Cheese", "Extra Sauce", "Thin Crust", "Thick Crust", "No Cheese",
		"Well Done", "Add Mushrooms", "Add Pepperoni", "Add Sausage", "Add Bacon",
		"Add Onions", "Add Bell Peppers", "Add Olives",
	}
}

// EstimatePrice applies the documented estimate formula: subtotal from the
// known line totals (or the fixed default when none), 10% tax, flat delivery
// fee.
func EstimatePrice(lineTotals float64) PriceQuote {
	subtotal := lineTotals
	if subtotal <= 0 {
		subtotal = estimateEmptySubtotal
	}
	tax := round2(subtotal * estimateTaxRate)
	total := round2(subtotal + tax + estimateDeliveryFee)
	return PriceQuote{
		Subtotal:    round2(subtotal),
		Tax:         tax,
		DeliveryFee: estimateDeliveryFee,
		Total:       total,
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
