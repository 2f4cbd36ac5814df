package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/internal/util"
	"github.com/hupe1980/chatstore/logging"
	"github.com/hupe1980/chatstore/model"
	"github.com/hupe1980/chatstore/tool"
)

var (
	// ErrBusy is returned when an action needs an idle chat but a request is in flight.
	ErrBusy = errors.New("chat: a request is already in flight")
	// ErrNoToolCall is returned by AddToolResult for an unknown or already answered call.
	ErrNoToolCall = errors.New("chat: no pending tool call with that id")
	// ErrNothingToRegenerate is returned by Regenerate on an empty conversation.
	ErrNothingToRegenerate = errors.New("chat: nothing to regenerate")
)

// DefaultMaxSteps bounds the model round trips of one request.
const DefaultMaxSteps = 5

// Options configures a Chat.
type Options struct {
	// ID is the session id; generated when empty.
	ID string
	// Instructions is the system prompt. It may contain {{.chat_id}},
	// {{.message_count}} and any key of InstructionVars.
	Instructions string
	// InstructionVars are extra values available to the Instructions template.
	InstructionVars map[string]any
	// Tools are executed inline when the model calls them. Calls to tools not
	// listed here stay pending until AddToolResult answers them.
	Tools []tool.Tool
	// MaxSteps bounds the model round trips per request (default DefaultMaxSteps).
	MaxSteps int
	// Stream requests token streaming from the model (default true).
	Stream bool
	// Messages seeds the conversation.
	Messages []core.Message
	// Logger receives engine diagnostics (defaults to NoOpLogger).
	Logger logging.Logger
}

// Chat is a streaming chat engine. Every state transition publishes a new
// immutable snapshot to subscribers; the action bindings inside the snapshot
// are created once and stay identical for the lifetime of the Chat.
type Chat struct {
	id           string
	model        model.Model
	tools        map[string]tool.Tool
	toolDefs     []model.ToolDefinition
	instructions string
	vars         map[string]any
	maxSteps     int
	stream       bool
	logger       logging.Logger
	actions      core.Actions

	mu          sync.Mutex
	state       core.ChatState
	run         uint64
	cancel      context.CancelFunc
	interrupted bool

	subMu    sync.Mutex
	subs     map[int]func(core.ChatState)
	nextSub  int
	pending  bool
	flushing bool
}

// New creates an idle chat backed by m.
func New(m model.Model, optFns ...func(o *Options)) *Chat {
	opts := Options{
		MaxSteps: DefaultMaxSteps,
		Stream:   true,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ID == "" {
		opts.ID = core.NewID()
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	c := &Chat{
		id:           opts.ID,
		model:        m,
		tools:        make(map[string]tool.Tool, len(opts.Tools)),
		toolDefs:     tool.Definitions(opts.Tools),
		instructions: opts.Instructions,
		vars:         opts.InstructionVars,
		maxSteps:     opts.MaxSteps,
		stream:       opts.Stream,
		logger:       opts.Logger,
		subs:         make(map[int]func(core.ChatState)),
	}

	for _, t := range opts.Tools {
		c.tools[t.Name()] = t
	}

	c.actions = core.Actions{
		SendMessage:   c.SendMessage,
		Regenerate:    c.Regenerate,
		Stop:          c.Stop,
		ResumeStream:  c.ResumeStream,
		AddToolResult: c.AddToolResult,
		SetMessages:   c.SetMessages,
		ClearError:    c.ClearError,
	}

	msgs := make([]core.Message, len(opts.Messages))
	copy(msgs, opts.Messages)

	c.state = core.ChatState{
		ID:       opts.ID,
		Messages: msgs,
		Status:   core.StatusReady,
		Actions:  c.actions,
	}

	return c
}

// ID returns the session id.
func (c *Chat) ID() string { return c.id }

// Snapshot returns the current state.
func (c *Chat) Snapshot() core.ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActionsVersion reports the version of the action bindings. They are bound
// once in New, so it never changes.
func (c *Chat) ActionsVersion() uint64 { return 1 }

// Subscribe registers fn for every subsequent snapshot.
func (c *Chat) Subscribe(fn func(core.ChatState)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// publish delivers the latest snapshot. Only one goroutine delivers at a
// time; publishes arriving meanwhile (including from inside a subscriber)
// are coalesced into one more round by the delivering goroutine.
func (c *Chat) publish() {
	c.subMu.Lock()
	c.pending = true
	if c.flushing {
		c.subMu.Unlock()
		return
	}
	c.flushing = true

	for c.pending {
		c.pending = false
		fns := make([]func(core.ChatState), 0, len(c.subs))
		for _, fn := range c.subs {
			fns = append(fns, fn)
		}
		c.subMu.Unlock()

		s := c.Snapshot()
		for _, fn := range fns {
			fn(s)
		}

		c.subMu.Lock()
	}

	c.flushing = false
	c.subMu.Unlock()
}

// SendMessage appends msg and generates the assistant's reply. It blocks
// until the reply is complete, stopped or failed; a failure is returned and
// also recorded in the state.
func (c *Chat) SendMessage(ctx context.Context, msg core.Message) error {
	if msg.ID == "" {
		msg.ID = core.NewID()
	}
	if msg.Role == "" {
		msg.Role = core.RoleUser
	}

	c.mu.Lock()
	if c.state.Status.IsLoading() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Messages = appendMessage(c.state.Messages, msg)
	runID := c.beginLocked()
	c.mu.Unlock()

	c.logger.Debug("chat.send", "chat_id", c.id, "message_id", msg.ID)
	c.publish()

	return c.generate(ctx, runID, false)
}

// Regenerate drops the last assistant reply (if any) and generates a new one
// for the last user message.
func (c *Chat) Regenerate(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Status.IsLoading() {
		c.mu.Unlock()
		return ErrBusy
	}
	msgs := c.state.Messages
	last := len(msgs) - 1
	for last >= 0 && msgs[last].Role == core.RoleAssistant {
		last--
	}
	if last < 0 {
		c.mu.Unlock()
		return ErrNothingToRegenerate
	}
	c.state.Messages = append([]core.Message(nil), msgs[:last+1]...)
	runID := c.beginLocked()
	c.mu.Unlock()

	c.publish()

	return c.generate(ctx, runID, false)
}

// Stop cancels the in-flight request, keeping whatever was streamed so far.
// The status returns to ready. Stopping an idle chat is a no-op.
func (c *Chat) Stop() error {
	c.mu.Lock()
	if !c.state.Status.IsLoading() {
		c.mu.Unlock()
		return nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.run++
	c.interrupted = true
	c.state.Status = core.StatusReady
	c.mu.Unlock()

	c.logger.Info("chat.stopped", "chat_id", c.id)
	c.publish()

	return nil
}

// ResumeStream continues an interrupted reply or answers a trailing user
// message. It does nothing when the conversation is already complete.
func (c *Chat) ResumeStream(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Status.IsLoading() {
		c.mu.Unlock()
		return ErrBusy
	}
	msgs := c.state.Messages
	if len(msgs) == 0 {
		c.mu.Unlock()
		return nil
	}
	lastRole := msgs[len(msgs)-1].Role
	resumeAssistant := lastRole == core.RoleAssistant && c.interrupted
	if lastRole != core.RoleUser && !resumeAssistant {
		c.mu.Unlock()
		return nil
	}
	runID := c.beginLocked()
	c.mu.Unlock()

	c.publish()

	return c.generate(ctx, runID, resumeAssistant)
}

// AddToolResult answers a pending client-side tool call of the last
// assistant message. Once no call is left pending, generation continues and
// AddToolResult blocks until it completes.
func (c *Chat) AddToolResult(ctx context.Context, result core.ToolResult) error {
	c.mu.Lock()
	msgs := c.state.Messages
	idx := len(msgs) - 1
	if idx < 0 || msgs[idx].Role != core.RoleAssistant || !isPending(msgs[idx], result.ToolCallID) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNoToolCall, result.ToolCallID)
	}

	if result.ToolName == "" {
		for _, tc := range msgs[idx].ToolCalls() {
			if tc.ToolCallID == result.ToolCallID {
				result.ToolName = tc.ToolName
			}
		}
	}

	updated := msgs[idx].WithParts(result.Part())
	c.state.Messages = replaceMessage(msgs, idx, updated)

	if len(updated.PendingToolCalls()) > 0 || c.state.Status.IsLoading() {
		c.mu.Unlock()
		c.publish()
		return nil
	}

	runID := c.beginLocked()
	c.mu.Unlock()

	c.publish()

	return c.generate(ctx, runID, true)
}

// SetMessages replaces the conversation.
func (c *Chat) SetMessages(messages []core.Message) {
	msgs := make([]core.Message, len(messages))
	copy(msgs, messages)

	c.mu.Lock()
	c.state.Messages = msgs
	c.interrupted = false
	c.mu.Unlock()

	c.publish()
}

// ClearError removes the recorded error and, when the chat is in the error
// state, returns it to ready.
func (c *Chat) ClearError() {
	c.mu.Lock()
	if c.state.Error == nil && c.state.Status != core.StatusError {
		c.mu.Unlock()
		return
	}
	c.state.Error = nil
	if c.state.Status == core.StatusError {
		c.state.Status = core.StatusReady
	}
	c.mu.Unlock()

	c.publish()
}

// beginLocked moves the chat to submitted and starts a new run; caller must
// hold c.mu.
func (c *Chat) beginLocked() uint64 {
	c.run++
	c.state.Status = core.StatusSubmitted
	c.state.Error = nil
	c.interrupted = false
	return c.run
}

// update applies fn to the state if runID is still current and publishes.
func (c *Chat) update(runID uint64, fn func(s *core.ChatState)) bool {
	c.mu.Lock()
	if c.run != runID {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	c.mu.Unlock()

	c.publish()
	return true
}

func (c *Chat) renderInstructions(s core.ChatState) string {
	if c.instructions == "" {
		return ""
	}
	vars := make(map[string]any, len(c.vars)+2)
	for k, v := range c.vars {
		vars[k] = v
	}
	vars["chat_id"] = s.ID
	vars["message_count"] = len(s.Messages)

	out, err := util.RenderTemplate(c.instructions, vars)
	if err != nil {
		c.logger.Warn("chat.instructions.template_failed", "error", err.Error())
		return c.instructions
	}
	return out
}

func appendMessage(msgs []core.Message, m core.Message) []core.Message {
	next := make([]core.Message, 0, len(msgs)+1)
	next = append(next, msgs...)
	return append(next, m)
}

func replaceMessage(msgs []core.Message, idx int, m core.Message) []core.Message {
	next := make([]core.Message, len(msgs))
	copy(next, msgs)
	next[idx] = m
	return next
}

func isPending(m core.Message, callID string) bool {
	for _, tc := range m.PendingToolCalls() {
		if tc.ToolCallID == callID {
			return true
		}
	}
	return false
}
