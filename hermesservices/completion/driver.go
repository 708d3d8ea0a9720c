package completion

import (
	"context"
)

// Driver sends one prompt to a language model. The returned content is
// untrusted text.
type Driver interface {
	Complete(ctx context.Context, prompt string, options Options) (Completion, error)
}

type Options struct {
	Model      string
	SystemRole string
	Tools      []Tool
	// Accept, when set, decides whether a completion may be cached.
	Accept func(completion Completion) error
}

// Tool is a function the model may call instead of answering in prose.
// Parameters is a JSON schema object.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Completion struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"toolCalls"`
}

// Arguments returns the arguments of the first call to the named tool.
func (completion Completion) Arguments(toolName string) (string, bool) {
	for _, call := range completion.ToolCalls {
		if call.Name == toolName {
			return call.Arguments, true
		}
	}

	return "", false
}
