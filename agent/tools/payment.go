package tools

import (
	"context"
	"fmt"
	"slices"

	contractx "pieline/agent/contract"
	statex "pieline/agent/state"
	"pieline/fulfillment"
)

// GetOrderSummary returns the finalized snapshot for a given order id.
func GetOrderSummary(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	orderID, err := stringArg(args, "order_id")
	if err != nil {
		return nil, err
	}

	summary, ok := sess.Order.Summary(orderID)
	if !ok {
		return map[string]any{
			"success": false,
			"code":    "OrderNotFound",
			"message": fmt.Sprintf("no finalized order %q in this conversation", orderID),
		}, nil
	}
	return map[string]any{"order_summary": summary}, nil
}

// ProcessPayment records a payment against the latest finalized order and
// attempts to place it with the platform. The confirmation is synthesized
// locally and never blocks on the gateway; placement at worst degrades.
func ProcessPayment(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	method, err := stringArg(args, "payment_method")
	if err != nil {
		return nil, err
	}
	if !slices.Contains(contractx.PaymentMethods, method) {
		return nil, fmt.Errorf("%w: unsupported payment_method %q", contractx.ErrValidation, method)
	}

	tip, _ := numberArg(args, "tip_amount")
	amount, _ := numberArg(args, "amount")

	confirmation := sess.Order.RecordPayment(method, amount, tip)

	orderID := optionalStringArg(args, "order_id")
	if orderID == "" {
		orderID = confirmation.OrderID
	}
	if summary, ok := sess.Order.Summary(orderID); ok && sess.Order.Customer != nil {
		draft := fulfillment.OrderDraft{
			Customer:   *sess.Order.Customer,
			LocationID: sess.Order.LocationID,
		}
		for _, item := range summary.Items {
			draft.Items = append(draft.Items, fulfillment.DraftItem{
				Code:     item.Code,
				Quantity: item.Quantity,
				Options:  item.Options,
			})
		}
		placement := sess.Facade.PlaceOrder(ctx, draft, fulfillment.Payment{
			Amount:     confirmation.Amount,
			CardNumber: optionalStringArg(args, "card_number"),
			ExpiryDate: optionalStringArg(args, "expiry_date"),
			CVV:        optionalStringArg(args, "cvv"),
			TipAmount:  tip,
		})
		confirmation.TrackingURL = placement.TrackingURL
		if placement.EstimatedDeliveryTime != "" {
			confirmation.EstimatedTime = placement.EstimatedDeliveryTime
		}
		sess.Order.UpdatePayment(confirmation)
	}

	return map[string]any{
		"success":      true,
		"payment_id":   confirmation.PaymentID,
		"confirmation": confirmation,
	}, nil
}

// GetPaymentConfirmation looks up a previously recorded payment.
func GetPaymentConfirmation(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	paymentID, err := stringArg(args, "payment_id")
	if err != nil {
		return nil, err
	}

	confirmation, ok := sess.Order.Confirmation(paymentID)
	if !ok {
		return map[string]any{
			"success": false,
			"code":    "PaymentNotFound",
			"message": fmt.Sprintf("no payment %q in this conversation", paymentID),
		}, nil
	}
	return map[string]any{"payment_confirmation": confirmation}, nil
}
