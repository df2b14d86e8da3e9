// Package contract defines the wire-level types exchanged with the
// generation service. The shapes mirror the Anthropic Messages API so the
// orchestrator can be tested against fakes without losing fidelity to the
// real protocol.
package contract

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

const (
	StopReasonToolUse = "tool_use"
	StopReasonEndTurn = "end_turn"
)

// Message is one turn in the conversation sent to the generation service.
// Ordering of Content blocks is significant and preserved as appended.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a single block inside a message. Exactly one of Text,
// ToolUse, or ToolResult is set, according to Type.
type ContentBlock struct {
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	ToolUse    *ToolUse    `json:"tool_use,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ToolUse is the generation service requesting a tool invocation.
type ToolUse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// ToolResult pairs a ToolUse ID with the outcome of running the tool.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

// ToolDef describes a tool offered to the generation service.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// GenerationRequest is one call to the generation service.
type GenerationRequest struct {
	Model          string    `json:"model"`
	Temperature    float64   `json:"temperature"`
	MaxTokens      int       `json:"max_tokens"`
	Messages       []Message `json:"messages"`
	System         string    `json:"system"`
	Tools          []ToolDef `json:"tools,omitempty"`
	ToolChoiceAuto bool      `json:"-"`
}

// GenerationResponse is the generation service's reply.
type GenerationResponse struct {
	StopReason string         `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
}

// NewUserText builds a user message holding a single text block.
func NewUserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{NewTextBlock(text)}}
}

// NewTextBlock builds a text content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// NewToolUseBlock builds a tool-use content block.
func NewToolUseBlock(id, name string, input map[string]any) ContentBlock {
	return ContentBlock{Type: BlockToolUse, ToolUse: &ToolUse{ID: id, Name: name, Input: input}}
}

// NewToolResultBlock builds a tool-result content block.
func NewToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolResult: &ToolResult{
		ToolUseID: toolUseID,
		Content:   content,
		IsError:   isError,
	}}
}

// ToolUses returns the tool-use blocks of a response in the order they appear.
func (r *GenerationResponse) ToolUses() []*ToolUse {
	var uses []*ToolUse
	for _, block := range r.Content {
		if block.Type == BlockToolUse && block.ToolUse != nil {
			uses = append(uses, block.ToolUse)
		}
	}
	return uses
}

// TextContent returns the first text block of a response, if any.
func (r *GenerationResponse) TextContent() (string, bool) {
	for _, block := range r.Content {
		if block.Type == BlockText {
			return block.Text, true
		}
	}
	return "", false
}
