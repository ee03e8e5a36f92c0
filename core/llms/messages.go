package llms

// TurnRole describes who a conversation turn belongs to.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is one entry in the conversation history handed to the model. In a
// user turn Content is the recognized prompt, in an assistant turn it is the
// full generated response.
type Turn struct {
	Role    TurnRole
	Content string
}

// ToolCall is a tool invocation requested by the model. The pipeline surfaces
// tool calls on the stream contract but does not execute them.
type ToolCall struct {
	ID        string
	Type      string
	Name      string
	Arguments string
}

// Tool describes a callable tool advertised to the model. Parameters is any
// struct; clients reflect it to a JSON schema when assembling requests.
type Tool struct {
	Name        string
	Description string
	Parameters  any
}
