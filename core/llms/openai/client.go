// Package openai provides a streaming client for OpenAI-compatible chat
// completion endpoints.
package openai

import (
	"context"

	"github.com/ferrostad/voxa-core/core/llms"
)

const defaultURL = "https://api.openai.com/v1/chat/completions"

type Client struct {
	apiKey       string
	model        string
	url          string
	systemPrompt string
}

type ClientOption func(*Client)

// WithBaseURL points the client at any OpenAI-compatible completion endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.url = url }
}

func WithSystemPrompt(systemPrompt string) ClientOption {
	return func(c *Client) { c.systemPrompt = systemPrompt }
}

func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey: apiKey,
		model:  model,
		url:    defaultURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// PromptWithStream prepares a streaming completion request. The request is
// not issued until the returned stream's Chunks iterator is consumed.
func (c *Client) PromptWithStream(_ context.Context, prompt *string, opts ...llms.StreamingPromptOption) llms.Stream {
	options := llms.StreamingPromptOptions{Instructions: c.systemPrompt}
	for _, opt := range opts {
		opt(&options)
	}

	messages := toMessages(options.Instructions, options.Turns)
	if prompt != nil {
		messages = append(messages, message{Role: messageRoleUser, Content: *prompt})
	}

	return &Stream{
		apiKey:   c.apiKey,
		model:    c.model,
		url:      c.url,
		tools:    toTools(options.Tools),
		messages: messages,
	}
}
