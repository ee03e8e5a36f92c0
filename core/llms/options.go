package llms

// StreamingPromptOptions carries per-request settings for streaming clients.
type StreamingPromptOptions struct {
	// Instructions is the system prompt prepended to the conversation.
	Instructions string
	// Turns is the prior conversation history in order.
	Turns []Turn
	// Tools are advertised to the model alongside the request.
	Tools []Tool
}

type StreamingPromptOption func(*StreamingPromptOptions)

func WithInstructions(instructions string) StreamingPromptOption {
	return func(o *StreamingPromptOptions) {
		o.Instructions = instructions
	}
}

func WithTurns(turns ...Turn) StreamingPromptOption {
	return func(o *StreamingPromptOptions) {
		o.Turns = append(o.Turns, turns...)
	}
}

func WithTools(tools ...Tool) StreamingPromptOption {
	return func(o *StreamingPromptOptions) {
		o.Tools = append(o.Tools, tools...)
	}
}
