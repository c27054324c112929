// Package driver runs an interactive conversation: a chat model selects
// which tools to call and when to transfer, and every tool call is executed
// through the dispatch engine. The routing decisions live entirely in the
// model; this loop only carries them out.
package driver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	contractx "pieline/agent/contract"
	enginex "pieline/agent/engine"
)

const maxToolRounds = 8

type Driver struct {
	engine *enginex.Engine
	client *openaisdk.Client
	model  string

	in  io.Reader
	out io.Writer
}

func New(engine *enginex.Engine, client *openaisdk.Client, model string, in io.Reader, out io.Writer) (*Driver, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if client == nil {
		return nil, errors.New("chat client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("model name is required")
	}
	return &Driver{
		engine: engine,
		client: client,
		model:  model,
		in:     in,
		out:    out,
	}, nil
}

// Run starts a session and loops over user input until EOF.
func (d *Driver) Run(ctx context.Context) error {
	sess, err := d.engine.StartSession(ctx)
	if err != nil {
		return err
	}

	activeAgent := sess.ActiveAgent
	messages := []openaisdk.ChatCompletionMessageParamUnion{
		openaisdk.SystemMessage(d.systemPrompt(activeAgent)),
	}

	fmt.Fprintf(d.out, "session %s started with agent %s\n> ", sess.ID, activeAgent)

	scanner := bufio.NewScanner(d.in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Fprint(d.out, "> ")
			continue
		}
		messages = append(messages, openaisdk.UserMessage(text))

		messages, activeAgent, err = d.converse(ctx, sess.ID, messages, activeAgent)
		if err != nil {
			return err
		}
		fmt.Fprint(d.out, "> ")
	}
	return scanner.Err()
}

// converse lets the model call tools until it produces a plain reply.
func (d *Driver) converse(
	ctx context.Context,
	sessionID string,
	messages []openaisdk.ChatCompletionMessageParamUnion,
	activeAgent contractx.AgentName,
) ([]openaisdk.ChatCompletionMessageParamUnion, contractx.AgentName, error) {
	for round := 0; round < maxToolRounds; round++ {
		tools, err := d.toolParams(ctx, sessionID)
		if err != nil {
			return messages, activeAgent, err
		}

		completion, err := d.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
			Model:    openaisdk.ChatModel(d.model),
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return messages, activeAgent, fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return messages, activeAgent, errors.New("chat completion returned no choices")
		}

		msg := completion.Choices[0].Message
		messages = append(messages, msg.ToParam())

		if len(msg.ToolCalls) == 0 {
			fmt.Fprintln(d.out, strings.TrimSpace(msg.Content))
			return messages, activeAgent, nil
		}

		for _, tc := range msg.ToolCalls {
			args := map[string]any{}
			if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
				if err := json.Unmarshal([]byte(raw), &args); err != nil {
					log.Warn().Err(err).Str("tool", tc.Function.Name).Msg("model sent unparseable tool arguments")
				}
			}

			result, err := d.engine.Dispatch(ctx, sessionID, contractx.ToolCall{
				Tool: tc.Function.Name,
				Args: args,
			})
			if err != nil {
				// Dispatch-level rejection still goes back to the model as
				// tool output so the conversation can recover.
				result = contractx.ToolResult{Tool: tc.Function.Name, Error: err.Error()}
			}

			payload, err := json.Marshal(result)
			if err != nil {
				return messages, activeAgent, fmt.Errorf("marshal tool result: %w", err)
			}
			messages = append(messages, openaisdk.ToolMessage(string(payload), tc.ID))

			if result.Transfer != nil && result.Transfer.To != activeAgent {
				activeAgent = result.Transfer.To
				messages = append(messages, openaisdk.SystemMessage(d.systemPrompt(activeAgent)))
			}
		}
	}
	return messages, activeAgent, errors.New("model exceeded tool round limit")
}

func (d *Driver) toolParams(ctx context.Context, sessionID string) ([]openaisdk.ChatCompletionToolParam, error) {
	infos, err := d.engine.ActiveToolInfos(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	params := make([]openaisdk.ChatCompletionToolParam, 0, len(infos))
	for _, info := range infos {
		fn := openaisdk.FunctionDefinitionParam{
			Name:        info.Name,
			Description: openaisdk.String(info.Desc),
		}
		if info.ParamsOneOf != nil {
			apiSchema, err := info.ParamsOneOf.ToOpenAPIV3()
			if err != nil {
				return nil, fmt.Errorf("tool %s schema: %w", info.Name, err)
			}
			raw, err := json.Marshal(apiSchema)
			if err != nil {
				return nil, fmt.Errorf("tool %s schema: %w", info.Name, err)
			}
			var parameters map[string]any
			if err := json.Unmarshal(raw, &parameters); err != nil {
				return nil, fmt.Errorf("tool %s schema: %w", info.Name, err)
			}
			fn.Parameters = openaisdk.FunctionParameters(parameters)
		}
		params = append(params, openaisdk.ChatCompletionToolParam{Function: fn})
	}
	return params, nil
}

func (d *Driver) systemPrompt(name contractx.AgentName) string {
	agent, ok := d.engine.Agents().Agent(name)
	if !ok {
		return "You are a helpful assistant."
	}

	var b strings.Builder
	b.WriteString(agent.Instructions)
	b.WriteString("\n\nYou may transfer the conversation using the transfer tools. Available agents:\n")
	for _, target := range agent.Downstream {
		if downstream, ok := d.engine.Agents().Agent(target); ok {
			fmt.Fprintf(&b, "- %s: %s\n", downstream.Name, downstream.Description)
		}
	}
	return b.String()
}
