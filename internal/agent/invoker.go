// Package agent implements the three LLM agents of the learning pipeline:
// profile analysis, topic research, and flashcard generation. Each agent
// wraps an Invoker — a single prompt-in/text-out verb — so tests can stub
// the model and the agents stay backend-agnostic.
package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
)

// Invoker is the single-verb model contract the agents run on.
// Implementations must be safe to call from multiple goroutines.
type Invoker interface {
	// Invoke sends prompt to the model and returns its text response.
	Invoke(ctx context.Context, prompt string) (string, error)
}

// ChatInvoker is an Invoker over a plain chat model with a fixed system
// prompt. Used by the profile and flashcard agents, which need no tools.
type ChatInvoker struct {
	model  model.BaseChatModel
	system string
}

// NewChatInvoker constructs a ChatInvoker.
func NewChatInvoker(m model.BaseChatModel, system string) (*ChatInvoker, error) {
	if m == nil {
		return nil, fmt.Errorf("agent: chat model is required")
	}
	return &ChatInvoker{model: m, system: system}, nil
}

// Invoke sends the system prompt and user prompt to the model.
func (c *ChatInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(c.system),
		schema.UserMessage(prompt),
	}
	resp, err := c.model.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("agent: model invocation failed: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("agent: model returned no message")
	}
	return resp.Content, nil
}

// ReactInvoker is an Invoker over a ReAct agent loop: the model may call the
// configured tools before producing its final answer. Used by the research
// agent, which searches the web mid-flight.
type ReactInvoker struct {
	agent  *react.Agent
	system string
}

// NewReactInvoker constructs a ReactInvoker with the given tools.
func NewReactInvoker(ctx context.Context, m model.ToolCallingChatModel, tools []tool.BaseTool, system string) (*ReactInvoker, error) {
	if m == nil {
		return nil, fmt.Errorf("agent: chat model is required")
	}
	ra, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: m,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: tools,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("agent: failed to build react agent: %w", err)
	}
	return &ReactInvoker{agent: ra, system: system}, nil
}

// Invoke runs the ReAct loop to completion and returns the final answer.
func (r *ReactInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(r.system),
		schema.UserMessage(prompt),
	}
	out, err := r.agent.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("agent: react invocation failed: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("agent: react agent returned no message")
	}
	return out.Content, nil
}
