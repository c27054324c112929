package catalog

import (
	contractx "pieline/agent/contract"
	toolsx "pieline/agent/tools"
)

// Default assembles the shipped four-agent catalogue. The transfer graph is
// complete: every agent may hand off to every other; the ordering of the flow
// is a convention in each agent's instructions, not a structural rule.
func Default() (*Set, error) {
	storeFinder := &Agent{
		Name: contractx.AgentStoreFinder,
		Description: "Helps find the nearest pizza store based on the user's address. " +
			"Should be routed if the user wants to find a pizza store or is starting the ordering process.",
		Instructions: "You are a helpful pizza store locator. Find the nearest store for the user's address, " +
			"asking for the address if it was not provided. Once a store is selected, transfer the user to the " +
			"menu agent to continue the order.",
		Tools: []Tool{
			{
				Spec: contractx.ToolSpec{
					Name:        "findNearbyStores",
					Description: "Finds pizza stores near the provided address and returns a list of options.",
					Params: map[string]contractx.ParamSpec{
						"address": {Type: contractx.ParamString, Description: "The user's address to find nearby stores.", Required: true},
					},
				},
				Handler: toolsx.FindNearbyStores,
			},
			{
				Spec: contractx.ToolSpec{
					Name:        "selectStore",
					Description: "Selects a store from the list of nearby stores.",
					Params: map[string]contractx.ParamSpec{
						"store_id": {Type: contractx.ParamString, Description: "The ID of the selected store.", Required: true},
					},
				},
				Handler: toolsx.SelectStore,
			},
		},
	}

	menu := &Agent{
		Name: contractx.AgentMenu,
		Description: "Displays the menu for the selected pizza store and takes the user's order. " +
			"Should be routed if the user wants to see the menu or place an order.",
		Instructions: "You are a helpful pizza menu assistant. Show the selected store's menu, help the user " +
			"build and customize their order, and transfer to the payment agent once the order is finalized.",
		Tools: []Tool{
			{
				Spec: contractx.ToolSpec{
					Name:        "getMenu",
					Description: "Gets the menu for the selected store.",
					Params: map[string]contractx.ParamSpec{
						"store_id": {Type: contractx.ParamString, Description: "The ID of the store; defaults to the selected store."},
					},
				},
				Handler: toolsx.GetMenu,
			},
			{
				Spec: contractx.ToolSpec{
					Name:        "addItemToOrder",
					Description: "Adds an item to the user's order.",
					Params: map[string]contractx.ParamSpec{
						"item_id":        {Type: contractx.ParamString, Description: "The ID of the item to add to the order.", Required: true},
						"quantity":       {Type: contractx.ParamInteger, Description: "The quantity of the item to add.", Required: true},
						"customizations": {Type: contractx.ParamArray, Description: "Human-readable customizations for the item."},
						"options":        {Type: contractx.ParamObject, Description: "Vendor option map: customization label to portion to option code."},
					},
				},
				Handler: toolsx.AddItemToOrder,
			},
			{
				Spec: contractx.ToolSpec{
					Name:        "viewCurrentOrder",
					Description: "Views the current order.",
				},
				Handler: toolsx.ViewCurrentOrder,
			},
			{
				Spec: contractx.ToolSpec{
					Name:        "finalizeOrder",
					Description: "Finalizes the order and prepares for payment.",
					Params: map[string]contractx.ParamSpec{
						"delivery_address":      {Type: contractx.ParamString, Description: "The delivery address for the order.", Required: true},
						"delivery_instructions": {Type: contractx.ParamString, Description: "Any special delivery instructions."},
						"first_name":            {Type: contractx.ParamString, Description: "Customer first name."},
						"last_name":             {Type: contractx.ParamString, Description: "Customer last name."},
						"phone":                 {Type: contractx.ParamString, Description: "Customer phone number."},
						"email":                 {Type: contractx.ParamString, Description: "Customer email address."},
					},
				},
				Handler: toolsx.FinalizeOrder,
			},
		},
	}

	payment := &Agent{
		Name: contractx.AgentPayment,
		Description: "Processes payments for pizza orders. " +
			"Should be routed if the user is ready to pay for their order.",
		Instructions: "You are a helpful payment processor for pizza orders. Collect the payment details, " +
			"process the payment, and provide a confirmation with the payment identifier.",
		Tools: []Tool{
			{
				Spec: contractx.ToolSpec{
					Name:        "getOrderSummary",
					Description: "Gets a summary of the order to be paid for.",
					Params: map[string]contractx.ParamSpec{
						"order_id": {Type: contractx.ParamString, Description: "The ID of the order to get a summary for.", Required: true},
					},
				},
				Handler: toolsx.GetOrderSummary,
			},
			{
				Spec: contractx.ToolSpec{
					Name:        "processPayment",
					Description: "Processes a payment for an order.",
					Params: map[string]contractx.ParamSpec{
						"order_id":       {Type: contractx.ParamString, Description: "The ID of the order to process payment for."},
						"payment_method": {Type: contractx.ParamString, Description: "The payment method to use.", Required: true, Enum: contractx.PaymentMethods},
						"card_number":    {Type: contractx.ParamString, Description: "The credit/debit card number (if applicable)."},
						"expiry_date":    {Type: contractx.ParamString, Description: "The card expiry date in MM/YY format (if applicable)."},
						"cvv":            {Type: contractx.ParamString, Description: "The card CVV (if applicable)."},
						"tip_amount":     {Type: contractx.ParamNumber, Description: "The tip amount to add to the order."},
					},
				},
				Handler: toolsx.ProcessPayment,
			},
			{
				Spec: contractx.ToolSpec{
					Name:        "getPaymentConfirmation",
					Description: "Gets the confirmation details for a processed payment.",
					Params: map[string]contractx.ParamSpec{
						"payment_id": {Type: contractx.ParamString, Description: "The ID of the payment to get confirmation for.", Required: true},
					},
				},
				Handler: toolsx.GetPaymentConfirmation,
			},
		},
	}

	simulatedHuman := &Agent{
		Name:        contractx.AgentSimulatedHuman,
		Description: "A simulated human user for testing the pizza ordering system.",
		Instructions: "You are a simulated human user for testing the pizza ordering system. Respond to the " +
			"agents' questions and provide the information they request.",
	}

	all := []contractx.AgentName{
		contractx.AgentStoreFinder,
		contractx.AgentMenu,
		contractx.AgentPayment,
		contractx.AgentSimulatedHuman,
	}
	agents := []*Agent{storeFinder, menu, payment, simulatedHuman}
	for _, agent := range agents {
		for _, name := range all {
			if name != agent.Name {
				agent.Downstream = append(agent.Downstream, name)
			}
		}
	}

	return NewSet(agents...)
}
