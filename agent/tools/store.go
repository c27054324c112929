package tools

import (
	"context"
	"fmt"

	contractx "pieline/agent/contract"
	statex "pieline/agent/state"
	"pieline/fulfillment"
)

// FindNearbyStores locates delivery stores around the given address. The
// facade guarantees a usable result, so this handler never fails the flow.
func FindNearbyStores(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	address, err := stringArg(args, "address")
	if err != nil {
		return nil, err
	}

	result := sess.Facade.FindNearbyLocations(ctx, address)
	return map[string]any{
		"stores":   result.Locations,
		"degraded": result.Degraded,
		"warning":  result.Warning,
	}, nil
}

// SelectStore pins the conversation to one store and records it on the order.
func SelectStore(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	storeID, err := stringArg(args, "store_id")
	if err != nil {
		return nil, err
	}

	result := sess.Facade.GetLocationDetails(ctx, storeID)
	sess.Order.SelectLocation(result.Location.ID)

	return map[string]any{
		"selected_store": result.Location,
		"degraded":       result.Degraded,
		"warning":        result.Warning,
	}, nil
}

// GetMenu returns the menu for the selected (or explicitly named) store.
func GetMenu(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	storeID := optionalStringArg(args, "store_id")
	if storeID == "" {
		storeID = sess.Order.LocationID
	}
	if storeID == "" {
		return nil, fmt.Errorf("%w: no store selected; call selectStore or pass store_id", contractx.ErrValidation)
	}

	result := sess.Facade.GetMenu(ctx, storeID)
	return map[string]any{
		"menu_categories":       result.Categories,
		"customization_options": fulfillment.CustomizationOptions(),
		"degraded":              result.Degraded,
		"warning":               result.Warning,
	}, nil
}
