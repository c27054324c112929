package contract

import "time"

type AgentName string

const (
	AgentStoreFinder    AgentName = "store_finder"
	AgentMenu           AgentName = "menu"
	AgentPayment        AgentName = "payment"
	AgentSimulatedHuman AgentName = "simulated_human"
)

// ToolCall is one tool invocation issued by the external conversation driver
// against the session's currently active agent.
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries the outcome of one tool invocation back to the driver.
// Domain-level failures (item not found, missing argument) travel in Error as
// data; only dispatch failures (unknown tool, unknown session) surface as Go
// errors.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`

	// Transfer is set when the call switched the active agent.
	Transfer *TransferResult `json:"transfer,omitempty"`
}

type TransferResult struct {
	From AgentName `json:"from"`
	To   AgentName `json:"to"`
}

// ToolSpec is the published contract of one callable tool: name, routing
// description, and a JSON-schema-like parameter list.
type ToolSpec struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Params      map[string]ParamSpec `json:"params,omitempty"`
}

type ParamSpec struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
}

type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
	ParamArray   ParamType = "array"
	ParamObject  ParamType = "object"
)

// PaymentMethod values accepted by the payment agent.
var PaymentMethods = []string{"credit_card", "debit_card", "paypal", "cash"}

// Clock is injected where generated records carry timestamps, so tests can pin
// time.
type Clock func() time.Time
