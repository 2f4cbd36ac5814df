package core

// Field is a bit set naming the ChatState fields carried by a Patch.
type Field uint16

const (
	FieldID Field = 1 << iota
	FieldMessages
	FieldStatus
	FieldError
	FieldSendMessage
	FieldRegenerate
	FieldStop
	FieldResumeStream
	FieldAddToolResult
	FieldSetMessages
	FieldClearError

	// FieldActions selects all seven action bindings.
	FieldActions = FieldSendMessage | FieldRegenerate | FieldStop | FieldResumeStream |
		FieldAddToolResult | FieldSetMessages | FieldClearError
	// FieldAll selects every ChatState field.
	FieldAll = FieldID | FieldMessages | FieldStatus | FieldError | FieldActions
)

// Has reports whether all bits of o are set.
func (f Field) Has(o Field) bool { return f&o == o }

// Patch is a partial ChatState. Only the fields named in Fields are merged;
// everything else keeps its previous value. The zero Patch carries nothing.
type Patch struct {
	Fields Field
	Values ChatState
}

// NewPatch starts an empty patch.
func NewPatch() Patch { return Patch{} }

// SnapshotPatch carries every field of s, which is what a producer sync writes.
func SnapshotPatch(s ChatState) Patch { return Patch{Fields: FieldAll, Values: s} }

// WithID sets the session id.
func (p Patch) WithID(id string) Patch {
	p.Fields |= FieldID
	p.Values.ID = id
	return p
}

// WithMessages replaces the message list as a whole.
func (p Patch) WithMessages(messages []Message) Patch {
	p.Fields |= FieldMessages
	p.Values.Messages = messages
	return p
}

// WithStatus sets the status.
func (p Patch) WithStatus(s Status) Patch {
	p.Fields |= FieldStatus
	p.Values.Status = s
	return p
}

// WithError sets the error; a nil err clears it.
func (p Patch) WithError(err error) Patch {
	p.Fields |= FieldError
	p.Values.Error = err
	return p
}

// WithActions replaces all seven action bindings.
func (p Patch) WithActions(a Actions) Patch {
	p.Fields |= FieldActions
	p.Values.Actions = a
	return p
}

// Empty reports whether the patch carries no field.
func (p Patch) Empty() bool { return p.Fields == 0 }

// Apply merges the patch onto base field by field and returns the result.
func (p Patch) Apply(base ChatState) ChatState {
	next := base
	f := p.Fields
	v := p.Values
	if f.Has(FieldID) {
		next.ID = v.ID
	}
	if f.Has(FieldMessages) {
		next.Messages = v.Messages
	}
	if f.Has(FieldStatus) {
		next.Status = v.Status
	}
	if f.Has(FieldError) {
		next.Error = v.Error
	}
	if f.Has(FieldSendMessage) {
		next.SendMessage = v.SendMessage
	}
	if f.Has(FieldRegenerate) {
		next.Regenerate = v.Regenerate
	}
	if f.Has(FieldStop) {
		next.Stop = v.Stop
	}
	if f.Has(FieldResumeStream) {
		next.ResumeStream = v.ResumeStream
	}
	if f.Has(FieldAddToolResult) {
		next.AddToolResult = v.AddToolResult
	}
	if f.Has(FieldSetMessages) {
		next.SetMessages = v.SetMessages
	}
	if f.Has(FieldClearError) {
		next.ClearError = v.ClearError
	}
	return next
}
