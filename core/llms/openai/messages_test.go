package openai

import (
	"testing"

	"github.com/ferrostad/voxa-core/core/llms"
)

func TestToMessagesPrependsInstructionsAndMapsRoles(t *testing.T) {
	messages := toMessages("be brief", []llms.Turn{
		{Role: llms.TurnRoleUser, Content: "hi"},
		{Role: llms.TurnRoleAssistant, Content: "hello"},
	})

	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Role != messageRoleSystem || messages[0].Content != "be brief" {
		t.Fatalf("expected leading system message, got %+v", messages[0])
	}
	if messages[1].Role != messageRoleUser {
		t.Fatalf("expected user role, got %q", messages[1].Role)
	}
	if messages[2].Role != messageRoleAssistant {
		t.Fatalf("expected assistant role, got %q", messages[2].Role)
	}
}

func TestToMessagesWithoutInstructions(t *testing.T) {
	messages := toMessages("", []llms.Turn{{Role: llms.TurnRoleUser, Content: "hi"}})

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Role != messageRoleUser {
		t.Fatalf("expected user role, got %q", messages[0].Role)
	}
}

func TestToToolsReflectsParameters(t *testing.T) {
	type weatherParams struct {
		Location string `json:"location"`
	}

	wireTools := toTools([]llms.Tool{{
		Name:        "get_weather",
		Description: "look up the weather",
		Parameters:  weatherParams{},
	}})

	if len(wireTools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(wireTools))
	}
	if wireTools[0].Type != "function" {
		t.Fatalf("expected function tool type, got %q", wireTools[0].Type)
	}
	if wireTools[0].Function.Name != "get_weather" {
		t.Fatalf("expected copied tool name, got %q", wireTools[0].Function.Name)
	}
	if wireTools[0].Function.Parameters == nil {
		t.Fatal("expected reflected parameter schema")
	}
}

func TestToToolsEmpty(t *testing.T) {
	if toTools(nil) != nil {
		t.Fatal("expected nil wire tools for empty input")
	}
}
