package fulfillment

import (
	"regexp"
	"strings"
)

// DefaultRegion is substituted when no region can be determined from a
// free-text address. The gateway rejects addresses without a region, so
// normalization must never fail.
const DefaultRegion = "CA"

// Address is the structured form the gateway requires.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code,omitempty"`
}

var zipPattern = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

// NormalizeAddress decomposes a free-text address into street, city, and a
// region+postal tail. Comma-delimited segments are street, then city, then
// the remainder; region names longer than two letters are mapped to their
// two-letter code. Deterministic: same input, same output.
func NormalizeAddress(raw string) Address {
	addr := Address{Region: DefaultRegion}

	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	if len(segments) == 0 {
		return addr
	}

	addr.Street = segments[0]
	if len(segments) > 1 {
		addr.City = segments[1]
	}

	tail := strings.Join(segments[2:], " ")
	if tail == "" {
		// City segment may carry the region/zip when the address has few commas.
		tail = addr.City
	}

	if zip := zipPattern.FindString(tail); zip != "" {
		addr.PostalCode = zip
		tail = strings.TrimSpace(strings.Replace(tail, zip, "", 1))
	}

	if region, ok := matchRegion(tail); ok {
		addr.Region = region
		// The tail doubled as the city segment; strip the region from it.
		if len(segments) <= 2 && addr.City != "" {
			addr.City = strings.TrimSpace(strings.TrimSuffix(addr.City, addr.PostalCode))
			if r, ok := lastWordRegion(addr.City); ok {
				addr.City = strings.TrimSpace(strings.TrimSuffix(addr.City, r))
			}
		}
	}

	return addr
}

func matchRegion(tail string) (string, bool) {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return "", false
	}
	if code, ok := regionCodes[strings.ToLower(tail)]; ok {
		return code, true
	}
	if len(tail) == 2 {
		upper := strings.ToUpper(tail)
		if _, ok := regionNames[upper]; ok {
			return upper, true
		}
	}
	// Last word of the tail, e.g. "Monterey CA".
	return lastWordRegion(tail)
}

func lastWordRegion(s string) (string, bool) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return "", false
	}
	last := words[len(words)-1]
	if len(last) == 2 {
		upper := strings.ToUpper(last)
		if _, ok := regionNames[upper]; ok {
			return upper, true
		}
	}
	if code, ok := regionCodes[strings.ToLower(last)]; ok {
		return code, true
	}
	return "", false
}

// regionCodes maps long-form region names to their two-letter codes.
var regionCodes = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

var regionNames = func() map[string]struct{} {
	names := make(map[string]struct{}, len(regionCodes))
	for _, code := range regionCodes {
		names[code] = struct{}{}
	}
	return names
}()
