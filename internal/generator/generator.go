// Package generator drives the bounded back-and-forth between the
// generation service and the tool executor until the service produces a
// final text answer, the round limit is reached, or an unrecoverable error
// occurs.
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harunnryd/kouza/internal/model/contract"
)

const (
	DefaultTemperature   = 0
	DefaultMaxTokens     = 800
	DefaultMaxToolRounds = 2
)

const (
	errNoTextContent    = "Error: No text content in response"
	errNoToolsExecuted  = "Error: Tool use requested but no tools executed"
	toolFailurePrefix   = "Tool execution failed: "
	exhaustedRoundsText = "Unable to complete query within %d tool rounds. Please try rephrasing your question or breaking it into smaller parts."
)

// ModelClient is the narrow capability the orchestrator consumes for text
// generation. Implemented by internal/model/anthropic and by fakes in tests.
type ModelClient interface {
	Generate(ctx context.Context, req contract.GenerationRequest) (*contract.GenerationResponse, error)
}

// ToolExecutor runs a named tool with its argument mapping and returns the
// tool's text output. A failed execution is reported through the error;
// execution of the remaining requests in the same round continues regardless.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

// Config holds the externally supplied generation parameters. Zero values
// fall back to the defaults above.
type Config struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	MaxToolRounds int
}

// Generator owns the sequential tool-calling loop for a single query. It is
// stateless across calls: the conversation accumulator and round counter
// live only for the duration of one GenerateResponse invocation, so a single
// Generator is safe for concurrent use.
type Generator struct {
	client        ModelClient
	model         string
	temperature   float64
	maxTokens     int
	maxToolRounds int
}

func New(client ModelClient, cfg Config) *Generator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}

	return &Generator{
		client:        client,
		model:         cfg.Model,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
		maxToolRounds: cfg.MaxToolRounds,
	}
}

// GenerateResponse answers a query, letting the generation service invoke
// tools for at most maxToolRounds rounds. The returned error is non-nil only
// when the initial generation call fails; every later failure mode is
// converted to a caller-visible string so that callers always receive text,
// never a partially constructed protocol object.
func (g *Generator) GenerateResponse(
	ctx context.Context,
	query string,
	conversationHistory string,
	tools []contract.ToolDef,
	executor ToolExecutor,
) (string, error) {
	system := SystemPrompt
	if conversationHistory != "" {
		system = SystemPrompt + "\n\nPrevious conversation:\n" + conversationHistory
	}

	messages := []contract.Message{contract.NewUserText(query)}

	req := g.baseRequest(messages, system)
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoiceAuto = true
	}

	resp, err := g.client.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}

	if resp.StopReason == contract.StopReasonToolUse && executor != nil {
		return g.runToolRounds(ctx, resp, messages, system, tools, executor), nil
	}

	return extractText(resp), nil
}

// runToolRounds is the bounded round-robin state machine: execute the
// requested tools, feed the results back, and repeat until the service stops
// asking for tools or the round budget runs out. The tool catalog is
// withheld starting at the final permitted round, forcing a text-only
// answer; the explicit counter check is a second safety net against a
// service that requests tools anyway.
func (g *Generator) runToolRounds(
	ctx context.Context,
	initial *contract.GenerationResponse,
	messages []contract.Message,
	system string,
	tools []contract.ToolDef,
	executor ToolExecutor,
) string {
	current := initial
	round := 0

	for {
		if current.StopReason != contract.StopReasonToolUse {
			return extractText(current)
		}

		// Preserve the assistant's raw content, tool-use blocks included.
		messages = append(messages, contract.Message{
			Role:    contract.RoleAssistant,
			Content: current.Content,
		})

		results := g.executeTools(ctx, current, executor)
		if len(results) == 0 {
			// The service claimed tool_use but sent no tool-use blocks.
			return errNoToolsExecuted
		}

		messages = append(messages, contract.Message{
			Role:    contract.RoleUser,
			Content: results,
		})

		round++
		if round > g.maxToolRounds {
			return g.salvageAnswer(current)
		}

		req := g.baseRequest(messages, system)
		// Tools are offered only while another round remains after this one.
		if round < g.maxToolRounds && len(tools) > 0 {
			req.Tools = tools
			req.ToolChoiceAuto = true
		}

		next, err := g.client.Generate(ctx, req)
		if err != nil {
			slog.Error("Generation call failed mid-loop", "round", round, "error", err)
			return fmt.Sprintf("API error in round %d: %v", round, err)
		}
		current = next
	}
}

// executeTools runs every tool-use request of the response in order. A
// failing tool is recorded as an error result and never aborts the batch.
func (g *Generator) executeTools(
	ctx context.Context,
	resp *contract.GenerationResponse,
	executor ToolExecutor,
) []contract.ContentBlock {
	var results []contract.ContentBlock
	for _, use := range resp.ToolUses() {
		output, err := executor.Execute(ctx, use.Name, use.Input)
		if err != nil {
			slog.Warn("Tool execution failed", "tool", use.Name, "error", err)
			results = append(results, contract.NewToolResultBlock(use.ID, toolFailurePrefix+err.Error(), true))
			continue
		}
		results = append(results, contract.NewToolResultBlock(use.ID, output, false))
	}
	return results
}

// salvageAnswer handles the round budget running out while the service still
// wants tools: any text carried by the last response wins, otherwise the
// caller gets the fixed explanatory message.
func (g *Generator) salvageAnswer(last *contract.GenerationResponse) string {
	if text, ok := last.TextContent(); ok && text != "" {
		return text
	}
	return fmt.Sprintf(exhaustedRoundsText, g.maxToolRounds)
}

func (g *Generator) baseRequest(messages []contract.Message, system string) contract.GenerationRequest {
	return contract.GenerationRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Messages:    messages,
		System:      system,
	}
}

func extractText(resp *contract.GenerationResponse) string {
	if text, ok := resp.TextContent(); ok {
		return text
	}
	return errNoTextContent
}
