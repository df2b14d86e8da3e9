// Package anthropic adapts the generation wire contract to the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/harunnryd/kouza/internal/model/contract"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

type Client struct {
	client anthropic.Client
}

func New(apiKey string) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return &Client{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (c *Client) Generate(ctx context.Context, req contract.GenerationRequest) (*contract.GenerationResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: param.NewOpt(req.Temperature),
		Messages:    toMessageParams(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toToolParams(req.Tools)
		if req.ToolChoiceAuto {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{
				OfAuto: &anthropic.ToolChoiceAutoParam{},
			}
		}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	resp := &contract.GenerationResponse{StopReason: string(msg.StopReason)}
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Content = append(resp.Content, contract.NewTextBlock(b.Text))
		case anthropic.ToolUseBlock:
			var input map[string]any
			if err := json.Unmarshal(b.Input, &input); err != nil {
				input = map[string]any{}
			}
			resp.Content = append(resp.Content, contract.NewToolUseBlock(b.ID, b.Name, input))
		}
	}

	return resp, nil
}

func toMessageParams(messages []contract.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
		for _, b := range m.Content {
			switch b.Type {
			case contract.BlockText:
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			case contract.BlockToolUse:
				if b.ToolUse != nil {
					blocks = append(blocks, anthropic.NewToolUseBlock(b.ToolUse.ID, b.ToolUse.Input, b.ToolUse.Name))
				}
			case contract.BlockToolResult:
				if b.ToolResult != nil {
					blocks = append(blocks, anthropic.NewToolResultBlock(b.ToolResult.ToolUseID, b.ToolResult.Content, b.ToolResult.IsError))
				}
			}
		}

		if m.Role == contract.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

func toToolParams(tools []contract.ToolDef) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
		if props, ok := t.InputSchema["properties"].(map[string]any); ok {
			schema.Properties = props
		}
		if req, ok := t.InputSchema["required"].([]string); ok {
			schema.Required = req
		}

		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out
}
