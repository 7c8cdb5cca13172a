package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"weather-agent/internal/api"
	"weather-agent/internal/llm"
	"weather-agent/internal/tools"
)

// historyStore is the slice of the session layer the handler needs; tests
// substitute an in-memory fake.
type historyStore interface {
	History(ctx context.Context, conversationID string) ([]llm.Message, error)
	Append(ctx context.Context, conversationID string, messages ...llm.Message) error
}

// AgentHandler serves the conversational endpoint plus the direct tool
// endpoints used for debugging and scripted callers.
type AgentHandler struct {
	agent      *llm.Agent
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	sessions   historyStore
}

func NewAgentHandler(agent *llm.Agent, registry *tools.Registry, dispatcher *tools.Dispatcher, sessions historyStore) *AgentHandler {
	return &AgentHandler{
		agent:      agent,
		registry:   registry,
		dispatcher: dispatcher,
		sessions:   sessions,
	}
}

// HandleChat processes one user message. The agent calls tools as needed;
// the handler only owns conversation identity and persistence.
func (h *AgentHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()

	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	history, err := h.sessions.History(c.Request.Context(), conversationID)
	if err != nil {
		// A history miss degrades to a fresh conversation rather than
		// failing the request.
		log.Printf("WARNING: could not load history for %s: %v", conversationID, err)
		history = nil
	}

	reply, usage, err := h.agent.Respond(c.Request.Context(), history, req.Message)
	if err != nil {
		log.Printf("agent failed for conversation %s: %v", conversationID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant could not process your request. Please try again."})
		return
	}

	err = h.sessions.Append(c.Request.Context(), conversationID,
		llm.Message{Role: llm.RoleUser, Content: req.Message},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	)
	if err != nil {
		log.Printf("WARNING: could not persist conversation %s: %v", conversationID, err)
	}

	c.JSON(http.StatusOK, api.ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		Usage:          usage,
		LatencyMS:      time.Since(startTime).Milliseconds(),
	})
}

// HandleListTools returns the registered tool definitions.
func (h *AgentHandler) HandleListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.registry.Definitions()})
}

// HandleToolCall dispatches a raw tool call, bypassing the model. The body
// is the tool's argument object.
func (h *AgentHandler) HandleToolCall(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	result := h.dispatcher.Dispatch(c.Request.Context(), api.ToolCall{
		Name:      c.Param("name"),
		Arguments: json.RawMessage(body),
	})

	switch {
	case !result.Failed():
		c.JSON(http.StatusOK, result)
	case result.Error.Kind == api.ErrInvalidArguments:
		c.JSON(http.StatusBadRequest, result)
	default:
		c.JSON(http.StatusBadGateway, result)
	}
}
