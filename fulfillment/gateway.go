package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxResponseSizeBytes = 4 << 20

// PriceQuote is the authoritative price breakdown from the platform.
type PriceQuote struct {
	Subtotal    float64
	Tax         float64
	DeliveryFee float64
	Total       float64
}

// Placement is the authoritative result of placing an order.
type Placement struct {
	OrderID               string
	TrackingURL           string
	EstimatedDeliveryTime string
}

// Gateway is the narrow boundary to the vendor's fulfillment platform. It is
// treated as unreliable and slow; only the Facade calls it.
type Gateway interface {
	FindNearbyLocations(ctx context.Context, addr Address) ([]Location, error)
	GetLocationDetails(ctx context.Context, locationID string) (Location, error)
	GetMenu(ctx context.Context, locationID string) ([]MenuCategory, error)
	CreateOrder(ctx context.Context, customer Customer, locationID string) (string, error)
	ValidateOrder(ctx context.Context, draft OrderDraft) (bool, string, error)
	PriceOrder(ctx context.Context, draft OrderDraft) (PriceQuote, error)
	PlaceOrder(ctx context.Context, draft OrderDraft, payment Payment) (Placement, error)
}

type GatewayConfig struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://order.dominos.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// HTTPGateway talks to a Dominos-style "power" API.
type HTTPGateway struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPGateway(cfg GatewayConfig) (*HTTPGateway, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gateway base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid gateway base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPGateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type storeLocatorResponse struct {
	Stores []powerStore `json:"Stores"`
}

type powerStore struct {
	StoreID                     string            `json:"StoreID"`
	StoreName                   string            `json:"StoreName"`
	AddressDescription          string            `json:"AddressDescription"`
	Phone                       string            `json:"Phone"`
	HoursDescription            string            `json:"HoursDescription"`
	IsOnlineCapable             bool              `json:"IsOnlineCapable"`
	IsDeliveryStore             bool              `json:"IsDeliveryStore"`
	IsOpen                      bool              `json:"IsOpen"`
	MinDistance                 float64           `json:"MinDistance"`
	ServiceIsOpen               powerServiceBools `json:"ServiceIsOpen"`
	ServiceEstimatedWaitMinutes powerServiceWaits `json:"ServiceEstimatedWaitMinutes"`
}

type powerServiceBools struct {
	Delivery bool `json:"Delivery"`
}

type powerServiceWaits struct {
	Delivery int `json:"Delivery"`
}

func (g *HTTPGateway) FindNearbyLocations(ctx context.Context, addr Address) ([]Location, error) {
	q := url.Values{}
	q.Set("s", addr.Street)
	q.Set("c", strings.TrimSpace(fmt.Sprintf("%s, %s %s", addr.City, addr.Region, addr.PostalCode)))
	q.Set("type", "Delivery")

	var parsed storeLocatorResponse
	if err := g.getJSON(ctx, "/power/store-locator?"+q.Encode(), &parsed); err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(parsed.Stores))
	for _, s := range parsed.Stores {
		// Only open stores that actually deliver are worth offering.
		if !s.IsOnlineCapable || !s.IsDeliveryStore || !s.IsOpen || !s.ServiceIsOpen.Delivery {
			continue
		}
		locations = append(locations, s.toLocation())
	}
	if len(locations) == 0 {
		return nil, errors.New("no delivery stores near address")
	}
	return locations, nil
}

func (g *HTTPGateway) GetLocationDetails(ctx context.Context, locationID string) (Location, error) {
	if strings.TrimSpace(locationID) == "" {
		return Location{}, errors.New("location id is required")
	}
	var parsed powerStore
	if err := g.getJSON(ctx, "/power/store/"+url.PathEscape(locationID)+"/profile", &parsed); err != nil {
		return Location{}, err
	}
	loc := parsed.toLocation()
	if loc.ID == "" {
		loc.ID = locationID
	}
	return loc, nil
}

type powerMenu struct {
	PreconfiguredProducts map[string]powerProduct `json:"PreconfiguredProducts"`
	Variants              map[string]powerVariant `json:"Variants"`
}

type powerProduct struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Size        string `json:"Size"`
}

type powerVariant struct {
	Price string `json:"Price"`
}

func (g *HTTPGateway) GetMenu(ctx context.Context, locationID string) ([]MenuCategory, error) {
	if strings.TrimSpace(locationID) == "" {
		return nil, errors.New("location id is required")
	}
	var parsed powerMenu
	path := "/power/store/" + url.PathEscape(locationID) + "/menu?lang=en&structured=true"
	if err := g.getJSON(ctx, path, &parsed); err != nil {
		return nil, err
	}

	byCategory := map[string][]MenuItem{}
	for code, product := range parsed.PreconfiguredProducts {
		item := MenuItem{
			Code:        code,
			Name:        product.Name,
			Description: product.Description,
			Size:        product.Size,
			Category:    categorizeProduct(code, product.Size),
		}
		if variant, ok := parsed.Variants[code]; ok {
			if price, err := strconv.ParseFloat(variant.Price, 64); err == nil {
				item.Price = price
			}
		}
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	categories := make([]MenuCategory, 0, len(menuCategoryOrder))
	for _, name := range menuCategoryOrder {
		if items := byCategory[name]; len(items) > 0 {
			categories = append(categories, MenuCategory{Name: name, Items: items})
		}
	}
	if len(categories) == 0 {
		return nil, errors.New("menu has no preconfigured products")
	}
	return categories, nil
}

var menuCategoryOrder = []string{"Pizzas", "Sides", "Drinks", "Desserts", "Other"}

func categorizeProduct(code, size string) string {
	upper := strings.ToUpper(code)
	switch {
	case strings.Contains(size, "Liter"):
		return "Drinks"
	case strings.Contains(upper, "PIZZA"), strings.Contains(upper, "SCREEN"), strings.Contains(upper, "HAND"):
		return "Pizzas"
	case strings.Contains(upper, "WING"), strings.Contains(upper, "BREAD"), strings.Contains(upper, "CHICK"):
		return "Sides"
	case strings.Contains(upper, "LAVA"), strings.Contains(upper, "BROWNIE"), strings.Contains(upper, "COOKIE"):
		return "Desserts"
	default:
		return "Other"
	}
}

// CreateOrder verifies the location exists and mints an order identifier. The
// platform itself has no standalone create call; an order only materializes
// remotely at validate/price/place time.
func (g *HTTPGateway) CreateOrder(ctx context.Context, customer Customer, locationID string) (string, error) {
	if strings.TrimSpace(customer.Address) == "" {
		return "", errors.New("customer address is required")
	}
	if _, err := g.GetLocationDetails(ctx, locationID); err != nil {
		return "", err
	}
	return "ORD-" + uuid.NewString()[:8], nil
}

type orderResponse struct {
	Status     int    `json:"Status"`
	StatusText string `json:"StatusText"`
	Order      struct {
		OrderID string `json:"OrderID"`
		Amounts struct {
			FoodAndBeverage float64 `json:"FoodAndBeverage"`
			Tax             float64 `json:"Tax"`
			DeliveryFee     float64 `json:"DeliveryFee"`
			Customer        float64 `json:"Customer"`
		} `json:"Amounts"`
		EstimatedWaitMinutes string `json:"EstimatedWaitMinutes"`
	} `json:"Order"`
}

func (g *HTTPGateway) ValidateOrder(ctx context.Context, draft OrderDraft) (bool, string, error) {
	parsed, err := g.postOrder(ctx, "/power/validate-order", draft, nil)
	if err != nil {
		return false, "", err
	}
	if parsed.Status < 0 {
		return false, parsed.StatusText, nil
	}
	return true, parsed.StatusText, nil
}

func (g *HTTPGateway) PriceOrder(ctx context.Context, draft OrderDraft) (PriceQuote, error) {
	parsed, err := g.postOrder(ctx, "/power/price-order", draft, nil)
	if err != nil {
		return PriceQuote{}, err
	}
	if parsed.Status < 0 {
		return PriceQuote{}, fmt.Errorf("price rejected: %s", parsed.StatusText)
	}
	amounts := parsed.Order.Amounts
	if amounts.Customer <= 0 {
		return PriceQuote{}, errors.New("price response has no customer total")
	}
	return PriceQuote{
		Subtotal:    amounts.FoodAndBeverage,
		Tax:         amounts.Tax,
		DeliveryFee: amounts.DeliveryFee,
		Total:       amounts.Customer,
	}, nil
}

func (g *HTTPGateway) PlaceOrder(ctx context.Context, draft OrderDraft, payment Payment) (Placement, error) {
	parsed, err := g.postOrder(ctx, "/power/place-order", draft, &payment)
	if err != nil {
		return Placement{}, err
	}
	if parsed.Status < 0 {
		return Placement{}, fmt.Errorf("place rejected: %s", parsed.StatusText)
	}
	orderID := parsed.Order.OrderID
	if orderID == "" {
		return Placement{}, errors.New("place response has no order id")
	}
	eta := "30-45 minutes"
	if parsed.Order.EstimatedWaitMinutes != "" {
		eta = parsed.Order.EstimatedWaitMinutes + " minutes"
	}
	return Placement{
		OrderID:               orderID,
		TrackingURL:           g.baseURL + "/track/" + url.PathEscape(orderID),
		EstimatedDeliveryTime: eta,
	}, nil
}

func (p powerStore) toLocation() Location {
	loc := Location{
		ID:      p.StoreID,
		Name:    p.StoreName,
		Address: p.AddressDescription,
		Phone:   p.Phone,
		Hours:   p.HoursDescription,
	}
	if loc.Name == "" && p.StoreID != "" {
		loc.Name = "Store #" + p.StoreID
	}
	if p.MinDistance > 0 {
		loc.Distance = fmt.Sprintf("%.1f miles", p.MinDistance)
	}
	if p.ServiceEstimatedWaitMinutes.Delivery > 0 {
		loc.EstimatedDeliveryTime = fmt.Sprintf("%d minutes", p.ServiceEstimatedWaitMinutes.Delivery)
	} else {
		loc.EstimatedDeliveryTime = "30-45 minutes"
	}
	return loc
}

type powerOrderEnvelope struct {
	Order powerOrder `json:"Order"`
}

type powerOrder struct {
	StoreID   string         `json:"StoreID"`
	Address   Address        `json:"Address"`
	FirstName string         `json:"FirstName"`
	LastName  string         `json:"LastName"`
	Phone     string         `json:"Phone"`
	Email     string         `json:"Email"`
	Products  []powerLine    `json:"Products"`
	Payments  []powerPayment `json:"Payments,omitempty"`
}

type powerLine struct {
	Code    string                       `json:"Code"`
	Qty     int                          `json:"Qty"`
	Options map[string]map[string]string `json:"Options,omitempty"`
}

type powerPayment struct {
	Type       string  `json:"Type"`
	Amount     float64 `json:"Amount"`
	Number     string  `json:"Number,omitempty"`
	Expiration string  `json:"Expiration,omitempty"`
	CardCode   string  `json:"SecurityCode,omitempty"`
	PostalCode string  `json:"PostalCode,omitempty"`
	TipAmount  float64 `json:"TipAmount,omitempty"`
}

func (g *HTTPGateway) postOrder(ctx context.Context, path string, draft OrderDraft, payment *Payment) (*orderResponse, error) {
	envelope := powerOrderEnvelope{
		Order: powerOrder{
			StoreID:   draft.LocationID,
			Address:   NormalizeAddress(draft.Customer.Address),
			FirstName: draft.Customer.FirstName,
			LastName:  draft.Customer.LastName,
			Phone:     draft.Customer.Phone,
			Email:     draft.Customer.Email,
		},
	}
	for _, item := range draft.Items {
		envelope.Order.Products = append(envelope.Order.Products, powerLine{
			Code:    item.Code,
			Qty:     item.Quantity,
			Options: item.Options,
		})
	}
	if payment != nil {
		envelope.Order.Payments = append(envelope.Order.Payments, powerPayment{
			Type:       "CreditCard",
			Amount:     payment.Amount,
			Number:     payment.CardNumber,
			Expiration: payment.ExpiryDate,
			CardCode:   payment.CVV,
			PostalCode: payment.PostalCode,
			TipAmount:  payment.TipAmount,
		})
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var parsed orderResponse
	if err := g.do(req, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (g *HTTPGateway) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	return g.do(req, out)
}

func (g *HTTPGateway) do(req *http.Request, out any) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("gateway http status=%d body=%s", resp.StatusCode, truncate(raw, 256))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
