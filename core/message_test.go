package core

import "testing"

func TestMessage_Constructors(t *testing.T) {
	u := NewUserMessage("  hi there ")
	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Fatalf("NewUserMessage did not initialize fields: %+v", u)
	}
	if u.Role != RoleUser || u.Text() != "hi there" {
		t.Fatalf("unexpected user message: %+v", u)
	}
	if a := NewAssistantMessage("ok"); a.Role != RoleAssistant || a.Text() != "ok" {
		t.Fatalf("unexpected assistant message: %+v", a)
	}
	if s := NewSystemMessage("rules"); s.Role != RoleSystem {
		t.Fatalf("unexpected system message: %+v", s)
	}
	if NewUserMessage("a").ID == NewUserMessage("a").ID {
		t.Fatal("ids should be unique")
	}
}

func TestMessage_ToolCallsAndPending(t *testing.T) {
	m := NewMessage(RoleAssistant,
		TextPart{Text: "checking"},
		ToolCallPart{ToolCallID: "c1", ToolName: "get_weather"},
		ToolCallPart{ToolCallID: "c2", ToolName: "search"},
		ToolResultPart{ToolCallID: "c1", ToolName: "get_weather", Output: "sunny"},
	)

	if calls := m.ToolCalls(); len(calls) != 2 || calls[0].ToolCallID != "c1" {
		t.Fatalf("unexpected tool calls: %+v", calls)
	}
	if res := m.ToolResults(); len(res) != 1 || res[0].Output != "sunny" {
		t.Fatalf("unexpected tool results: %+v", res)
	}
	pending := m.PendingToolCalls()
	if len(pending) != 1 || pending[0].ToolCallID != "c2" {
		t.Fatalf("expected c2 pending, got %+v", pending)
	}
}

func TestMessage_WithPartsCopies(t *testing.T) {
	orig := NewMessage(RoleAssistant, TextPart{Text: "a"})
	orig.Parts = orig.Parts[:1:1]
	next := orig.WithParts(TextPart{Text: "b"})
	if len(orig.Parts) != 1 {
		t.Fatalf("original parts modified: %+v", orig.Parts)
	}
	if next.Text() != "ab" || next.ID != orig.ID {
		t.Fatalf("unexpected result: %+v", next)
	}
}

func TestPart_Types(t *testing.T) {
	parts := []Part{
		TextPart{},
		ToolCallPart{},
		ToolResultPart{},
		DataPart{},
		UnknownPart{Kind: "reasoning"},
	}
	want := []string{PartTypeText, PartTypeToolCall, PartTypeToolResult, PartTypeData, "reasoning"}
	for i, p := range parts {
		if p.Type() != want[i] {
			t.Errorf("part %d: got %q want %q", i, p.Type(), want[i])
		}
	}
	r := ToolResult{ToolCallID: "x", ToolName: "calc", Output: 4}.Part()
	if r.ToolCallID != "x" || r.Output != 4 {
		t.Fatalf("unexpected result part: %+v", r)
	}
}
