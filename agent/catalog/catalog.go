// Package catalog defines the fixed set of conversational agents, their tool
// contracts, and the declared transfer graph between them. The catalogue is
// assembled once at start-up and read-only afterwards; no agent holds private
// state.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "pieline/agent/contract"
	statex "pieline/agent/state"
)

// Handler executes one domain tool against the conversation's session.
type Handler func(ctx context.Context, sess *statex.Session, args map[string]any) (any, error)

// Tool binds a published spec to its handler.
type Tool struct {
	Spec    contractx.ToolSpec
	Handler Handler
}

// Agent is one entry in the catalogue: a name, a routing description, the
// tools it exposes, and the downstream agents it may transfer to.
type Agent struct {
	Name         contractx.AgentName
	Description  string
	Instructions string
	Tools        []Tool
	Downstream   []contractx.AgentName
}

// Tool resolves a domain tool by name on this agent only.
func (a *Agent) Tool(name string) (Tool, bool) {
	for _, t := range a.Tools {
		if t.Spec.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// CanTransferTo reports whether target is a declared downstream agent.
func (a *Agent) CanTransferTo(target contractx.AgentName) bool {
	for _, name := range a.Downstream {
		if name == target {
			return true
		}
	}
	return false
}

// TransferToolName is the implicit tool name for handing off to target.
func TransferToolName(target contractx.AgentName) string {
	return "transfer_to_" + string(target)
}

// TransferTarget inverts TransferToolName; ok is false for non-transfer
// tool names.
func TransferTarget(toolName string) (contractx.AgentName, bool) {
	rest, found := strings.CutPrefix(toolName, "transfer_to_")
	if !found || rest == "" {
		return "", false
	}
	return contractx.AgentName(rest), true
}

// Set is the process-wide agent catalogue.
type Set struct {
	agents map[contractx.AgentName]*Agent
	order  []contractx.AgentName
}

// NewSet validates the catalogue: unique names, tools with names, and
// downstream lists that only reference registered agents.
func NewSet(agents ...*Agent) (*Set, error) {
	set := &Set{
		agents: make(map[contractx.AgentName]*Agent, len(agents)),
	}
	for _, agent := range agents {
		if agent == nil || agent.Name == "" {
			return nil, fmt.Errorf("%w: agent name is empty", contractx.ErrValidation)
		}
		if _, exists := set.agents[agent.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate agent %s", contractx.ErrValidation, agent.Name)
		}
		for _, t := range agent.Tools {
			if strings.TrimSpace(t.Spec.Name) == "" || t.Handler == nil {
				return nil, fmt.Errorf("%w: agent %s has an unnamed or handlerless tool", contractx.ErrValidation, agent.Name)
			}
		}
		set.agents[agent.Name] = agent
		set.order = append(set.order, agent.Name)
	}

	for _, agent := range set.agents {
		for _, target := range agent.Downstream {
			if target == agent.Name {
				return nil, fmt.Errorf("%w: agent %s lists itself downstream", contractx.ErrValidation, agent.Name)
			}
			if _, ok := set.agents[target]; !ok {
				return nil, fmt.Errorf("%w: agent %s lists unknown downstream %s", contractx.ErrValidation, agent.Name, target)
			}
		}
	}

	return set, nil
}

func (s *Set) Agent(name contractx.AgentName) (*Agent, bool) {
	a, ok := s.agents[name]
	return a, ok
}

// Agents returns the catalogue in registration order.
func (s *Set) Agents() []*Agent {
	out := make([]*Agent, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.agents[name])
	}
	return out
}

// ToolInfos publishes an agent's full tool surface, domain tools plus one
// implicit transfer tool per downstream agent, as eino tool schemas.
func (s *Set) ToolInfos(name contractx.AgentName) ([]*schema.ToolInfo, error) {
	agent, ok := s.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownAgent, name)
	}

	infos := make([]*schema.ToolInfo, 0, len(agent.Tools)+len(agent.Downstream))
	for _, t := range agent.Tools {
		infos = append(infos, toolInfo(t.Spec))
	}
	for _, target := range agent.Downstream {
		downstream := s.agents[target]
		infos = append(infos, toolInfo(transferSpec(downstream)))
	}
	return infos, nil
}

// Specs is ToolInfos in the transport-neutral contract form, for the HTTP
// surface.
func (s *Set) Specs(name contractx.AgentName) ([]contractx.ToolSpec, error) {
	agent, ok := s.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownAgent, name)
	}

	specs := make([]contractx.ToolSpec, 0, len(agent.Tools)+len(agent.Downstream))
	for _, t := range agent.Tools {
		specs = append(specs, t.Spec)
	}
	for _, target := range agent.Downstream {
		specs = append(specs, transferSpec(s.agents[target]))
	}
	return specs, nil
}

func transferSpec(target *Agent) contractx.ToolSpec {
	return contractx.ToolSpec{
		Name:        TransferToolName(target.Name),
		Description: "Transfer the conversation to the " + string(target.Name) + " agent. " + target.Description,
	}
}

func toolInfo(spec contractx.ToolSpec) *schema.ToolInfo {
	params := make(map[string]*schema.ParameterInfo, len(spec.Params))
	for name, p := range spec.Params {
		info := &schema.ParameterInfo{
			Type:     dataType(p.Type),
			Desc:     p.Description,
			Required: p.Required,
			Enum:     p.Enum,
		}
		if p.Type == contractx.ParamArray {
			info.ElemInfo = &schema.ParameterInfo{Type: schema.String}
		}
		params[name] = info
	}

	info := &schema.ToolInfo{
		Name: spec.Name,
		Desc: spec.Description,
	}
	if len(params) > 0 {
		info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	}
	return info
}

func dataType(t contractx.ParamType) schema.DataType {
	switch t {
	case contractx.ParamNumber:
		return schema.Number
	case contractx.ParamInteger:
		return schema.Integer
	case contractx.ParamArray:
		return schema.Array
	case contractx.ParamObject:
		return schema.Object
	default:
		return schema.String
	}
}
