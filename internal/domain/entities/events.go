package entities

import (
	"time"

	"github.com/google/uuid"
)

// ToolCallEvent represents one tool invocation through the registry.
type ToolCallEvent struct {
	ID        string            `json:"id" bson:"_id"`
	ToolName  string            `json:"tool_name" bson:"tool_name"`
	Arguments string            `json:"arguments" bson:"arguments"`
	Result    string            `json:"result" bson:"result"`
	Error     string            `json:"error,omitempty" bson:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// NewToolCallEvent creates a new tool call event
func NewToolCallEvent(toolName, arguments, result, errorMsg string, metadata map[string]string) *ToolCallEvent {
	return &ToolCallEvent{
		ID:        uuid.New().String(),
		ToolName:  toolName,
		Arguments: arguments,
		Result:    result,
		Error:     errorMsg,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
