package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"weather-agent/internal/api"
	"weather-agent/internal/tools"
)

// SystemPrompt is the agent's standing instruction to the model.
const SystemPrompt = "You are a helpful weather assistant. Provide clear, concise weather information. Ask for clarification if location is unclear."

// defaultMaxToolRounds bounds the generate/dispatch loop so a confused model
// cannot spin forever.
const defaultMaxToolRounds = 6

// Agent owns the tool-execution loop: it sends the conversation to the
// model with the registry's tool definitions attached, dispatches whatever
// tool calls come back, feeds the structured results into the next turn,
// and repeats until the model produces a final text answer.
type Agent struct {
	client        Client
	registry      *tools.Registry
	dispatcher    *tools.Dispatcher
	maxToolRounds int
}

// NewAgent wires the loop. maxToolRounds <= 0 selects the default bound.
func NewAgent(client Client, registry *tools.Registry, dispatcher *tools.Dispatcher, maxToolRounds int) *Agent {
	if maxToolRounds <= 0 {
		maxToolRounds = defaultMaxToolRounds
	}
	return &Agent{
		client:        client,
		registry:      registry,
		dispatcher:    dispatcher,
		maxToolRounds: maxToolRounds,
	}
}

// Respond answers one user message given the prior conversation history.
// Tool failures are not terminal for the conversation: the structured
// ToolError is serialized into the tool response so the model can relay an
// actionable message to the user.
func (a *Agent) Respond(ctx context.Context, history []Message, userMessage string) (string, api.Usage, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: userMessage})

	definitions := a.registry.Definitions()
	var usage api.Usage

	for round := 0; round < a.maxToolRounds; round++ {
		generation, err := a.client.Generate(ctx, messages, definitions)
		if err != nil {
			return "", usage, err
		}
		usage.Add(generation.Usage)

		if len(generation.ToolCalls) == 0 {
			return generation.Content, usage, nil
		}

		messages = append(messages, Message{
			Role:      RoleAssistant,
			Content:   generation.Content,
			ToolCalls: generation.ToolCalls,
		})

		for _, call := range generation.ToolCalls {
			result := a.dispatcher.Dispatch(ctx, call)
			if result.Failed() {
				log.Printf("agent: tool %s returned %s", call.Name, result.Error.Kind)
			}

			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(fmt.Sprintf(`{"tool_name":%q,"error":{"kind":"provider_error","message":"result could not be serialized"}}`, call.Name))
			}
			messages = append(messages, Message{
				Role:     RoleTool,
				ToolName: call.Name,
				Content:  string(payload),
			})
		}
	}

	return "", usage, fmt.Errorf("model did not produce a final answer within %d tool rounds", a.maxToolRounds)
}
