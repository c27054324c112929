// Package engine dispatches tool calls from the external conversation driver
// to the session's active agent. Exactly one agent is active per session; a
// tool name resolves only against that agent's own tools plus its declared
// transfer tools.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	catalogx "pieline/agent/catalog"
	contractx "pieline/agent/contract"
	statex "pieline/agent/state"
	"pieline/fulfillment"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// DispatchInput identifies one tool invocation against a session.
type DispatchInput struct {
	SessionID string
	Call      contractx.ToolCall
}

type Engine struct {
	store   statex.Store
	agents  *catalogx.Set
	gateway fulfillment.Gateway

	runner compose.Runnable[DispatchInput, contractx.ToolResult]

	now func() time.Time
}

func New(store statex.Store, agents *catalogx.Set, gateway fulfillment.Gateway) (*Engine, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if agents == nil {
		return nil, errors.New("agent catalogue is required")
	}
	if gateway == nil {
		return nil, errors.New("fulfillment gateway is required")
	}

	e := &Engine{
		store:   store,
		agents:  agents,
		gateway: gateway,
		now:     time.Now,
	}

	runner, err := e.compileDispatchGraph(context.Background())
	if err != nil {
		return nil, err
	}
	e.runner = runner

	return e, nil
}

// StartSession creates and stores a fresh conversation session. Its order
// state and caches are private to that conversation.
func (e *Engine) StartSession(ctx context.Context) (*statex.Session, error) {
	sess := statex.NewSession(e.gateway)
	if err := e.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Session loads an existing session.
func (e *Engine) Session(ctx context.Context, sessionID string) (*statex.Session, error) {
	return e.store.Load(ctx, sessionID)
}

// ActiveTools publishes the tool catalogue of the session's active agent.
func (e *Engine) ActiveTools(ctx context.Context, sessionID string) ([]contractx.ToolSpec, error) {
	sess, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.agents.Specs(sess.ActiveAgent)
}

// ActiveToolInfos is ActiveTools in eino schema form, for model drivers.
func (e *Engine) ActiveToolInfos(ctx context.Context, sessionID string) ([]*schema.ToolInfo, error) {
	sess, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.agents.ToolInfos(sess.ActiveAgent)
}

// Agents exposes the read-only catalogue.
func (e *Engine) Agents() *catalogx.Set {
	return e.agents
}

// Dispatch routes one tool call through the compiled pipeline. Domain and
// lookup failures come back inside the ToolResult; only malformed dispatch
// requests (unknown session, unknown tool) fail the call itself.
func (e *Engine) Dispatch(ctx context.Context, sessionID string, call contractx.ToolCall) (contractx.ToolResult, error) {
	out, err := e.runner.Invoke(ctx, DispatchInput{
		SessionID: sessionID,
		Call:      call,
	})
	if err != nil {
		return contractx.ToolResult{}, err
	}
	return out, nil
}

// callState threads one invocation through the dispatch graph.
type callState struct {
	Input   DispatchInput
	Session *statex.Session
	Agent   *catalogx.Agent
	Result  contractx.ToolResult
	Now     time.Time
}

func (e *Engine) compileDispatchGraph(ctx context.Context) (compose.Runnable[DispatchInput, contractx.ToolResult], error) {
	graph := compose.NewGraph[DispatchInput, contractx.ToolResult]()

	if err := graph.AddLambdaNode("validate_call",
		compose.InvokableLambda(func(ctx context.Context, in DispatchInput) (*callState, error) {
			return e.validateCall(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_call: %w", err)
	}

	if err := graph.AddLambdaNode("load_session",
		compose.InvokableLambda(func(ctx context.Context, in *callState) (*callState, error) {
			return e.loadSession(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("execute_tool",
		compose.InvokableLambda(func(ctx context.Context, in *callState) (*callState, error) {
			return e.executeTool(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tool: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *callState) (*callState, error) {
			in.Session.Touch(in.Now)
			if err := e.store.Save(ctx, in.Session); err != nil {
				return nil, err
			}
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_result",
		compose.InvokableLambda(func(ctx context.Context, in *callState) (contractx.ToolResult, error) {
			return in.Result, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_result: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_call"},
		{"validate_call", "load_session"},
		{"load_session", "execute_tool"},
		{"execute_tool", "save_session"},
		{"save_session", "finalize_result"},
		{"finalize_result", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("engine.dispatch"))
	if err != nil {
		return nil, fmt.Errorf("compile dispatch graph: %w", err)
	}
	return runner, nil
}

func (e *Engine) validateCall(in DispatchInput) (*callState, error) {
	if in.SessionID == "" {
		return nil, fmt.Errorf("%w: session id is empty", contractx.ErrValidation)
	}
	if in.Call.Tool == "" {
		return nil, fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
	}
	return &callState{
		Input: in,
		Now:   e.now(),
	}, nil
}

func (e *Engine) loadSession(ctx context.Context, in *callState) (*callState, error) {
	sess, err := e.store.Load(ctx, in.Input.SessionID)
	if err != nil {
		return nil, err
	}

	agent, ok := e.agents.Agent(sess.ActiveAgent)
	if !ok {
		return nil, fmt.Errorf("%w: session active agent %s", contractx.ErrUnknownAgent, sess.ActiveAgent)
	}

	in.Session = sess
	in.Agent = agent
	return in, nil
}

func (e *Engine) executeTool(ctx context.Context, in *callState) (*callState, error) {
	name := in.Input.Call.Tool
	args := in.Input.Call.Args

	if target, ok := catalogx.TransferTarget(name); ok {
		return e.executeTransfer(in, target)
	}

	tool, ok := in.Agent.Tool(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s (active agent %s)", contractx.ErrUnknownTool, name, in.Agent.Name)
	}

	if err := validateArgs(tool.Spec, args); err != nil {
		in.Result = contractx.ToolResult{Tool: name, Error: err.Error()}
		return in, nil
	}

	result, err := tool.Handler(ctx, in.Session, args)
	if err != nil {
		// Domain failures travel as data; the active agent phrases them
		// for the user.
		log.Debug().Err(err).Str("tool", name).Str("agent", string(in.Agent.Name)).Msg("tool returned domain error")
		in.Result = contractx.ToolResult{Tool: name, Error: err.Error()}
		return in, nil
	}

	in.Result = contractx.ToolResult{Tool: name, Result: result}
	return in, nil
}

// executeTransfer switches the active agent. Legality is checked against the
// declared adjacency list, not assumed from the complete shipped graph.
func (e *Engine) executeTransfer(in *callState, target contractx.AgentName) (*callState, error) {
	if _, ok := e.agents.Agent(target); !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownAgent, target)
	}
	if !in.Agent.CanTransferTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", contractx.ErrIllegalTransfer, in.Agent.Name, target)
	}

	transfer := in.Session.Transfer(target)
	log.Info().
		Str("session_id", in.Session.ID).
		Str("from", string(transfer.From)).
		Str("to", string(transfer.To)).
		Msg("agent transfer")

	in.Result = contractx.ToolResult{
		Tool:     in.Input.Call.Tool,
		Result:   fmt.Sprintf("active agent changed to %s", target),
		Transfer: &transfer,
	}
	return in, nil
}
