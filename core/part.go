package core

// Part represents a polymorphic segment of a message. Concrete part types
// implement the unexported isPart marker enabling a closed set; UnknownPart
// carries kinds this package does not model.
type Part interface {
	isPart()
	// Type returns the part discriminator ("text", "tool-call", ...).
	Type() string
}

// Part discriminators.
const (
	PartTypeText       = "text"
	PartTypeToolCall   = "tool-call"
	PartTypeToolResult = "tool-result"
	PartTypeData       = "data"
)

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

func (TextPart) isPart() {}

// Type implements Part.
func (TextPart) Type() string { return PartTypeText }

// ToolCallPart describes a tool invocation requested by the assistant.
type ToolCallPart struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Arguments  string `json:"arguments,omitempty"` // Serialized argument payload (JSON)
	Metadata   map[string]any
}

func (ToolCallPart) isPart() {}

// Type implements Part.
func (ToolCallPart) Type() string { return PartTypeToolCall }

// ToolResultPart carries the outcome of a previously requested tool call.
type ToolResultPart struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Output     any    `json:"output,omitempty"`
	Error      string `json:"error,omitempty"` // Populated on failure
	Metadata   map[string]any
}

func (ToolResultPart) isPart() {}

// Type implements Part.
func (ToolResultPart) Type() string { return PartTypeToolResult }

// DataPart is a structured data segment (e.g., JSON object map).
type DataPart struct {
	Name     string
	Data     map[string]any
	Metadata map[string]any
}

func (DataPart) isPart() {}

// Type implements Part.
func (DataPart) Type() string { return PartTypeData }

// UnknownPart preserves a producer-specific part verbatim.
type UnknownPart struct {
	Kind string
	Raw  any
}

func (UnknownPart) isPart() {}

// Type implements Part.
func (p UnknownPart) Type() string { return p.Kind }

// ToolResult is the payload accepted by the AddToolResult action.
type ToolResult struct {
	ToolCallID string
	ToolName   string
	Output     any
	Error      string
}

// Part converts the result into its message part form.
func (r ToolResult) Part() ToolResultPart {
	return ToolResultPart{ToolCallID: r.ToolCallID, ToolName: r.ToolName, Output: r.Output, Error: r.Error}
}
