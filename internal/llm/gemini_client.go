package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"weather-agent/internal/api"
	"weather-agent/internal/tools"
)

// GeminiClient is the client for Google's Gemini models with function
// calling enabled.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient connects to the Gemini API and configures the model with
// the agent's system prompt. A low temperature keeps tool-argument
// generation deterministic.
func NewGeminiClient(ctx context.Context, apiKey, modelID, systemPrompt string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelID)
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(2048)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Close releases the underlying API connection.
func (c *GeminiClient) Close() error { return c.client.Close() }

// Generate performs a standard, blocking request to the Gemini API with the
// registry's tool definitions attached.
func (c *GeminiClient) Generate(ctx context.Context, messages []Message, available []tools.Tool) (*GenerationResult, error) {
	if len(messages) == 0 {
		return nil, errors.New("cannot generate from an empty conversation")
	}

	model := c.modelWithTools(available)
	chat := model.StartChat()
	chat.History = toGeminiHistory(messages[:len(messages)-1])

	resp, err := chat.SendMessage(ctx, toGeminiParts(messages[len(messages)-1])...)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return parseGeminiResponse(resp)
}

// modelWithTools returns a shallow copy of the configured model with the
// given tool set attached. The shared model is never mutated, so concurrent
// Generate calls cannot race on the Tools field.
func (c *GeminiClient) modelWithTools(available []tools.Tool) *genai.GenerativeModel {
	model := *c.model
	if len(available) > 0 {
		model.Tools = toGeminiTools(available)
	} else {
		model.Tools = nil
	}
	return &model
}

// toGeminiTools converts the registry's tool definitions to the Gemini
// SDK's format.
func toGeminiTools(defs []tools.Tool) []*genai.Tool {
	var geminiTools []*genai.Tool
	for _, t := range defs {
		decl := &genai.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  convertSchema(t.Function.Parameters),
		}
		geminiTools = append(geminiTools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{decl},
		})
	}
	return geminiTools
}

// convertSchema converts our JSONSchema to the Gemini SDK's schema type.
func convertSchema(s tools.JSONSchema) *genai.Schema {
	schema := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
	}
	switch s.Type {
	case "object":
		schema.Type = genai.TypeObject
	case "string":
		schema.Type = genai.TypeString
	case "number":
		schema.Type = genai.TypeNumber
	case "integer":
		schema.Type = genai.TypeInteger
	case "boolean":
		schema.Type = genai.TypeBoolean
	}
	if s.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema)
		for k, v := range s.Properties {
			schema.Properties[k] = convertSchema(*v)
		}
	}
	return schema
}

// toGeminiHistory converts our message history to the Gemini SDK's format.
func toGeminiHistory(messages []Message) []*genai.Content {
	var history []*genai.Content
	for _, msg := range messages {
		history = append(history, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: toGeminiParts(msg),
		})
	}
	return history
}

func geminiRole(role Role) string {
	switch role {
	case RoleAssistant:
		return "model"
	case RoleTool:
		return "function"
	default:
		return "user"
	}
}

// toGeminiParts renders one message as SDK parts: text and function calls
// for user/assistant turns, a function response for tool turns.
func toGeminiParts(msg Message) []genai.Part {
	if msg.Role == RoleTool {
		response := map[string]any{}
		if err := json.Unmarshal([]byte(msg.Content), &response); err != nil {
			response = map[string]any{"result": msg.Content}
		}
		return []genai.Part{genai.FunctionResponse{Name: msg.ToolName, Response: response}}
	}

	var parts []genai.Part
	if msg.Content != "" {
		parts = append(parts, genai.Text(msg.Content))
	}
	for _, call := range msg.ToolCalls {
		args := map[string]any{}
		if len(call.Arguments) > 0 {
			if err := json.Unmarshal(call.Arguments, &args); err != nil {
				log.Printf("WARNING: could not decode stored tool call args for %s: %v", call.Name, err)
			}
		}
		parts = append(parts, genai.FunctionCall{Name: call.Name, Args: args})
	}
	if len(parts) == 0 {
		parts = append(parts, genai.Text(""))
	}
	return parts
}

// parseGeminiResponse converts a Gemini API response into our internal
// GenerationResult.
func parseGeminiResponse(resp *genai.GenerateContentResponse) (*GenerationResult, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no content returned from Gemini")
	}

	var contentBuilder strings.Builder
	var toolCalls []api.ToolCall

	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			contentBuilder.WriteString(string(v))
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				log.Printf("WARNING: could not marshal tool call args for %s: %v", v.Name, err)
				continue
			}
			toolCalls = append(toolCalls, api.ToolCall{Name: v.Name, Arguments: args})
		}
	}

	result := &GenerationResult{
		Content:   strings.TrimSpace(contentBuilder.String()),
		ToolCalls: toolCalls,
	}
	if resp.UsageMetadata != nil {
		result.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		result.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}
