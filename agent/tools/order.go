package tools

import (
	"context"
	"errors"
	"fmt"

	contractx "pieline/agent/contract"
	statex "pieline/agent/state"
	"pieline/fulfillment"
)

// AddItemToOrder appends a line item to the shared order. An unknown product
// code is a lookup failure reported as data; the order is left untouched.
func AddItemToOrder(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	code, err := stringArg(args, "item_id")
	if err != nil {
		return nil, err
	}
	quantity, err := intArg(args, "quantity")
	if err != nil {
		return nil, err
	}
	customizations := stringSliceArg(args, "customizations")
	options := optionsArg(args, "options")

	line, err := sess.Order.AddLineItem(sess.Facade, code, quantity, customizations, options)
	if err != nil {
		if errors.Is(err, statex.ErrItemNotFound) {
			return map[string]any{
				"success": false,
				"code":    "ItemNotFound",
				"message": fmt.Sprintf("item %q is not on any menu for this conversation", code),
			}, nil
		}
		return nil, err
	}

	return map[string]any{
		"success":     true,
		"added_item":  line,
		"order_total": sess.Order.Total,
	}, nil
}

// ViewCurrentOrder is a pure read of the shared order.
func ViewCurrentOrder(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	return sess.Order.View(), nil
}

// FinalizeOrder locks in the order for payment. Gateway trouble degrades the
// snapshot rather than failing it; missing input is rejected outright.
func FinalizeOrder(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	address, err := stringArg(args, "delivery_address")
	if err != nil {
		return nil, err
	}

	customer := fulfillment.Customer{
		Address:   address,
		FirstName: optionalStringArg(args, "first_name"),
		LastName:  optionalStringArg(args, "last_name"),
		Phone:     optionalStringArg(args, "phone"),
		Email:     optionalStringArg(args, "email"),
	}
	instructions := optionalStringArg(args, "delivery_instructions")

	snapshot, err := sess.Order.Finalize(ctx, sess.Facade, customer, instructions)
	if err != nil {
		if errors.Is(err, statex.ErrEmptyOrder) || errors.Is(err, statex.ErrAddressRequired) {
			return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
		}
		return nil, err
	}

	return map[string]any{
		"success":         true,
		"finalized_order": snapshot,
	}, nil
}
