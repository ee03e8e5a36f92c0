package openai

import (
	"github.com/ferrostad/voxa-core/core/llms"
	"github.com/invopop/jsonschema"
	"github.com/jinzhu/copier"
)

type messageRole string

const (
	messageRoleSystem    messageRole = "system"
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
)

type message struct {
	Role    messageRole `json:"role"`
	Content string      `json:"content"`
}

func toMessages(instructions string, turns []llms.Turn) []message {
	messages := []message{}
	if instructions != "" {
		messages = append(messages, message{Role: messageRoleSystem, Content: instructions})
	}

	for _, turn := range turns {
		role := messageRoleUser
		if turn.Role == llms.TurnRoleAssistant {
			role = messageRoleAssistant
		}
		messages = append(messages, message{Role: role, Content: turn.Content})
	}

	return messages
}

type tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

func toTools(tools []llms.Tool) []tool {
	if len(tools) == 0 {
		return nil
	}

	var functions []toolFunction
	_ = copier.Copy(&functions, tools)

	reflector := jsonschema.Reflector{DoNotReference: true}
	wireTools := make([]tool, len(functions))
	for i := range functions {
		if tools[i].Parameters != nil {
			functions[i].Parameters = reflector.Reflect(tools[i].Parameters)
		}
		wireTools[i] = tool{Type: "function", Function: functions[i]}
	}

	return wireTools
}

type requestBody struct {
	Model         string         `json:"model"`
	Messages      []message      `json:"messages"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
	Tools         []tool         `json:"tools,omitempty"`
	ToolChoice    *string        `json:"tool_choice,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type streamingResponseBody struct {
	Choices []struct {
		Delta struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			ToolCalls []toolCall `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *usage `json:"usage"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	TotalTime        float64 `json:"total_time"`
}
