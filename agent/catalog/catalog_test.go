package catalog

import (
	"context"
	"testing"

	contractx "pieline/agent/contract"
	statex "pieline/agent/state"
)

func noopHandler(ctx context.Context, sess *statex.Session, args map[string]any) (any, error) {
	return "ok", nil
}

func TestDefaultCatalogueIsComplete(t *testing.T) {
	t.Parallel()

	set, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	agents := set.Agents()
	if len(agents) != 4 {
		t.Fatalf("expected 4 agents, got %d", len(agents))
	}

	// Every agent can reach every other agent.
	for _, agent := range agents {
		if len(agent.Downstream) != len(agents)-1 {
			t.Fatalf("agent %s downstream: got %d, want %d", agent.Name, len(agent.Downstream), len(agents)-1)
		}
		for _, other := range agents {
			if other.Name == agent.Name {
				continue
			}
			if !agent.CanTransferTo(other.Name) {
				t.Fatalf("agent %s cannot transfer to %s", agent.Name, other.Name)
			}
		}
	}
}

func TestDefaultAgentTools(t *testing.T) {
	t.Parallel()

	set, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	wantTools := map[contractx.AgentName][]string{
		contractx.AgentStoreFinder:    {"findNearbyStores", "selectStore"},
		contractx.AgentMenu:           {"getMenu", "addItemToOrder", "viewCurrentOrder", "finalizeOrder"},
		contractx.AgentPayment:        {"getOrderSummary", "processPayment", "getPaymentConfirmation"},
		contractx.AgentSimulatedHuman: {},
	}

	for name, tools := range wantTools {
		agent, ok := set.Agent(name)
		if !ok {
			t.Fatalf("agent %s missing", name)
		}
		if len(agent.Tools) != len(tools) {
			t.Fatalf("agent %s: got %d tools, want %d", name, len(agent.Tools), len(tools))
		}
		for _, toolName := range tools {
			if _, ok := agent.Tool(toolName); !ok {
				t.Fatalf("agent %s missing tool %s", name, toolName)
			}
		}
	}
}

func TestSpecsIncludeTransferTools(t *testing.T) {
	t.Parallel()

	set, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	specs, err := set.Specs(contractx.AgentMenu)
	if err != nil {
		t.Fatalf("Specs: %v", err)
	}

	names := map[string]bool{}
	for _, spec := range specs {
		names[spec.Name] = true
	}
	for _, want := range []string{
		"getMenu", "addItemToOrder", "viewCurrentOrder", "finalizeOrder",
		"transfer_to_store_finder", "transfer_to_payment", "transfer_to_simulated_human",
	} {
		if !names[want] {
			t.Fatalf("menu agent specs missing %s (have %v)", want, names)
		}
	}
}

func TestToolInfosMatchSpecs(t *testing.T) {
	t.Parallel()

	set, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	infos, err := set.ToolInfos(contractx.AgentPayment)
	if err != nil {
		t.Fatalf("ToolInfos: %v", err)
	}
	specs, err := set.Specs(contractx.AgentPayment)
	if err != nil {
		t.Fatalf("Specs: %v", err)
	}
	if len(infos) != len(specs) {
		t.Fatalf("infos/specs length mismatch: %d vs %d", len(infos), len(specs))
	}
	for i, info := range infos {
		if info.Name != specs[i].Name {
			t.Fatalf("tool %d: info %s vs spec %s", i, info.Name, specs[i].Name)
		}
	}
}

func TestTransferToolNameRoundtrip(t *testing.T) {
	t.Parallel()

	name := TransferToolName(contractx.AgentPayment)
	if name != "transfer_to_payment" {
		t.Fatalf("unexpected transfer tool name: %s", name)
	}

	target, ok := TransferTarget(name)
	if !ok || target != contractx.AgentPayment {
		t.Fatalf("TransferTarget(%s) = %s, %v", name, target, ok)
	}

	if _, ok := TransferTarget("getMenu"); ok {
		t.Fatal("non-transfer tool name must not resolve")
	}
	if _, ok := TransferTarget("transfer_to_"); ok {
		t.Fatal("empty target must not resolve")
	}
}

func TestNewSetValidation(t *testing.T) {
	t.Parallel()

	a := &Agent{Name: "a", Tools: []Tool{{Spec: contractx.ToolSpec{Name: "doThing"}, Handler: noopHandler}}}
	b := &Agent{Name: "b"}

	if _, err := NewSet(a, b); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}

	dup := &Agent{Name: "a"}
	if _, err := NewSet(a, dup); err == nil {
		t.Fatal("duplicate agent name accepted")
	}

	selfLoop := &Agent{Name: "c", Downstream: []contractx.AgentName{"c"}}
	if _, err := NewSet(selfLoop); err == nil {
		t.Fatal("self transfer accepted")
	}

	dangling := &Agent{Name: "d", Downstream: []contractx.AgentName{"ghost"}}
	if _, err := NewSet(dangling); err == nil {
		t.Fatal("unknown downstream accepted")
	}

	handlerless := &Agent{Name: "e", Tools: []Tool{{Spec: contractx.ToolSpec{Name: "broken"}}}}
	if _, err := NewSet(handlerless); err == nil {
		t.Fatal("handlerless tool accepted")
	}
}
