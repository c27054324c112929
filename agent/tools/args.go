// Package tools implements the domain tool handlers the agents expose: store
// lookup, menu and order building, and payment. Handlers report domain
// failures as data, never as Go errors the dispatcher would surface.
package tools

import (
	"fmt"

	contractx "pieline/agent/contract"
)

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: %s is required", contractx.ErrValidation, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", contractx.ErrValidation, key)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key string) string {
	if raw, ok := args[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}

func numberArg(args map[string]any, key string) (float64, bool) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := numberArg(args, key)
	if !ok {
		return 0, fmt.Errorf("%w: %s is required and must be a number", contractx.ErrValidation, key)
	}
	return int(v), nil
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// optionsArg decodes the vendor option map: customization label -> portion ->
// option code, as the fulfillment platform expects it.
func optionsArg(args map[string]any, key string) map[string]map[string]string {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil
	}
	outer, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]map[string]string, len(outer))
	for label, inner := range outer {
		innerMap, ok := inner.(map[string]any)
		if !ok {
			continue
		}
		codes := make(map[string]string, len(innerMap))
		for portion, code := range innerMap {
			if s, ok := code.(string); ok {
				codes[portion] = s
			}
		}
		out[label] = codes
	}
	return out
}
