package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-agent/internal/api"
	"weather-agent/internal/tools"
	"weather-agent/internal/weather"
	"weather-agent/internal/weatherapi"
)

// scriptedClient plays back a fixed sequence of generations and records the
// messages it was handed, so tests can inspect how tool results were fed
// back into the conversation.
type scriptedClient struct {
	script   []*GenerationResult
	err      error
	turn     int
	seen     [][]Message
	seenDefs [][]tools.Tool
}

func (c *scriptedClient) Generate(_ context.Context, messages []Message, defs []tools.Tool) (*GenerationResult, error) {
	c.seen = append(c.seen, append([]Message(nil), messages...))
	c.seenDefs = append(c.seenDefs, defs)
	if c.err != nil {
		return nil, c.err
	}
	if c.turn >= len(c.script) {
		return &GenerationResult{Content: "out of script"}, nil
	}
	result := c.script[c.turn]
	c.turn++
	return result, nil
}

type stubRequester struct {
	responses map[weatherapi.Endpoint]json.RawMessage
}

func (s *stubRequester) Request(_ context.Context, endpoint weatherapi.Endpoint, _ url.Values) (json.RawMessage, error) {
	return s.responses[endpoint], nil
}

func newLoopFixture(client Client) *Agent {
	requester := &stubRequester{responses: map[weatherapi.Endpoint]json.RawMessage{
		weatherapi.EndpointGeocode:        json.RawMessage(`[{"name":"Dhaka","country":"BD","lat":23.7644,"lon":90.389}]`),
		weatherapi.EndpointCurrentWeather: json.RawMessage(`{"dt":1700000000,"timezone":21600,"main":{"temp":31.98,"feels_like":34.57,"humidity":51},"weather":[{"main":"Haze","description":"haze"}],"wind":{"speed":1.54,"deg":80}}`),
	}}
	registry := tools.NewWeatherRegistry(requester, weather.UnitsMetric)
	return NewAgent(client, registry, tools.NewDispatcher(registry), 0)
}

func TestAgentRespondWithoutTools(t *testing.T) {
	client := &scriptedClient{script: []*GenerationResult{
		{Content: "Hello! Ask me about the weather.", Usage: api.Usage{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 18}},
	}}
	agent := newLoopFixture(client)

	answer, usage, err := agent.Respond(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! Ask me about the weather.", answer)
	assert.Equal(t, 18, usage.TotalTokens)

	// The model saw the tool catalog and exactly one user message.
	require.Len(t, client.seen, 1)
	require.Len(t, client.seen[0], 1)
	assert.Equal(t, RoleUser, client.seen[0][0].Role)
	assert.Len(t, client.seenDefs[0], 5)
}

func TestAgentRespondRunsToolLoop(t *testing.T) {
	client := &scriptedClient{script: []*GenerationResult{
		{
			ToolCalls: []api.ToolCall{{
				Name:      tools.ToolCurrentWeather,
				Arguments: json.RawMessage(`{"location_name":"Dhaka"}`),
			}},
			Usage: api.Usage{PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25},
		},
		{
			Content: "It is 31.98°C and hazy in Dhaka.",
			Usage:   api.Usage{PromptTokens: 60, CompletionTokens: 12, TotalTokens: 72},
		},
	}}
	agent := newLoopFixture(client)

	answer, usage, err := agent.Respond(context.Background(), nil, "weather in Dhaka?")
	require.NoError(t, err)
	assert.Equal(t, "It is 31.98°C and hazy in Dhaka.", answer)
	assert.Equal(t, 97, usage.TotalTokens, "usage accumulates across rounds")

	// Second generation sees user, assistant tool-call, and tool result.
	require.Len(t, client.seen, 2)
	second := client.seen[1]
	require.Len(t, second, 3)
	assert.Equal(t, RoleUser, second[0].Role)
	assert.Equal(t, RoleAssistant, second[1].Role)
	require.Len(t, second[1].ToolCalls, 1)

	toolMsg := second[2]
	assert.Equal(t, RoleTool, toolMsg.Role)
	assert.Equal(t, tools.ToolCurrentWeather, toolMsg.ToolName)

	var result struct {
		ToolName string          `json:"tool_name"`
		Data     json.RawMessage `json:"data"`
		Error    json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &result))
	assert.Equal(t, tools.ToolCurrentWeather, result.ToolName)
	assert.Empty(t, result.Error)
	assert.Contains(t, string(result.Data), "31.98")
	assert.Contains(t, string(result.Data), "Dhaka")
}

func TestAgentRespondFeedsToolErrorsBack(t *testing.T) {
	client := &scriptedClient{script: []*GenerationResult{
		{ToolCalls: []api.ToolCall{{Name: "no_such_tool"}}},
		{Content: "I don't have that capability."},
	}}
	agent := newLoopFixture(client)

	answer, _, err := agent.Respond(context.Background(), nil, "do something strange")
	require.NoError(t, err, "a failed tool is conversation data, not a loop failure")
	assert.Equal(t, "I don't have that capability.", answer)

	toolMsg := client.seen[1][2]
	assert.Equal(t, RoleTool, toolMsg.Role)
	assert.Contains(t, toolMsg.Content, string(api.ErrInvalidArguments))
}

func TestAgentRespondBoundsToolRounds(t *testing.T) {
	// A model that calls tools forever must be cut off.
	looping := &scriptedClient{}
	looping.script = nil
	call := &GenerationResult{ToolCalls: []api.ToolCall{{
		Name:      tools.ToolConvertUnits,
		Arguments: json.RawMessage(`{"value":1,"from_unit":"C","to_unit":"F"}`),
	}}}
	for i := 0; i < 20; i++ {
		looping.script = append(looping.script, call)
	}
	agent := newLoopFixture(looping)

	_, _, err := agent.Respond(context.Background(), nil, "convert forever")
	require.Error(t, err)
	assert.Len(t, looping.seen, defaultMaxToolRounds)
}

func TestAgentRespondPropagatesGenerationError(t *testing.T) {
	client := &scriptedClient{err: errors.New("model unavailable")}
	agent := newLoopFixture(client)

	_, _, err := agent.Respond(context.Background(), nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestAgentRespondIncludesHistory(t *testing.T) {
	client := &scriptedClient{script: []*GenerationResult{{Content: "Still hazy."}}}
	agent := newLoopFixture(client)

	history := []Message{
		{Role: RoleUser, Content: "weather in Dhaka?"},
		{Role: RoleAssistant, Content: "It is hazy."},
	}
	_, _, err := agent.Respond(context.Background(), history, "and now?")
	require.NoError(t, err)

	require.Len(t, client.seen[0], 3)
	assert.Equal(t, "weather in Dhaka?", client.seen[0][0].Content)
	assert.Equal(t, "and now?", client.seen[0][2].Content)
}
