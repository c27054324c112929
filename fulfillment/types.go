// Package fulfillment wraps the external pizza fulfillment platform behind a
// resilient facade: every operation returns a usable result, authoritative
// when the gateway cooperates and synthesized otherwise.
package fulfillment

// Location is one store returned by the fulfillment platform. Immutable once
// fetched; cached by ID for the lifetime of a conversation.
type Location struct {
	ID                    string `json:"store_id"`
	Name                  string `json:"name"`
	Address               string `json:"address"`
	Phone                 string `json:"phone"`
	Distance              string `json:"distance,omitempty"`
	Hours                 string `json:"hours,omitempty"`
	EstimatedDeliveryTime string `json:"estimated_delivery_time,omitempty"`
}

type MenuItem struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Category    string  `json:"category,omitempty"`
	Size        string  `json:"size,omitempty"`
}

type MenuCategory struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

type Customer struct {
	Address   string `json:"address"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// DraftItem is one line of an order draft sent to the gateway.
type DraftItem struct {
	Code     string                       `json:"code"`
	Quantity int                          `json:"quantity"`
	Options  map[string]map[string]string `json:"options,omitempty"`
}

// OrderDraft is the gateway-facing projection of an in-progress order.
type OrderDraft struct {
	Customer   Customer    `json:"customer"`
	LocationID string      `json:"store_id"`
	Items      []DraftItem `json:"items"`
}

type Payment struct {
	Amount     float64 `json:"amount"`
	CardNumber string  `json:"card_number,omitempty"`
	ExpiryDate string  `json:"expiry_date,omitempty"`
	CVV        string  `json:"cvv,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	TipAmount  float64 `json:"tip_amount,omitempty"`
}

// Degradation is embedded in every facade result. Degraded marks synthesized
// data so callers and tests can tell fallback from authoritative results; the
// warning is safe to disclose to the user.
type Degradation struct {
	Degraded bool   `json:"degraded,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

type LocationsResult struct {
	Locations []Location `json:"locations"`
	Degradation
}

type LocationResult struct {
	Location Location `json:"location"`
	Degradation
}

type MenuResult struct {
	Categories []MenuCategory `json:"menu_categories"`
	Degradation
}

type CreateOrderResult struct {
	OrderID string `json:"order_id"`
	Degradation
}

type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Details string `json:"details,omitempty"`
	Degradation
}

type PriceResult struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
	Degradation
}

type PlaceOrderResult struct {
	OrderID               string `json:"order_id"`
	TrackingURL           string `json:"tracking_url,omitempty"`
	EstimatedDeliveryTime string `json:"estimated_delivery_time"`
	Degradation
}
