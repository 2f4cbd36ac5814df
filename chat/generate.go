package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/model"
	"github.com/hupe1980/chatstore/tool"
)

// errStale reports that the run was superseded (stopped or restarted).
var errStale = errors.New("chat: run superseded")

// generate drives model round trips for runID until the model stops calling
// tools, a client-side tool call needs an answer, MaxSteps is reached, or the
// run fails or is superseded. With continueLast the reply is appended to the
// trailing assistant message instead of starting a new one.
func (c *Chat) generate(ctx context.Context, runID uint64, continueLast bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.run != runID {
		c.mu.Unlock()
		return nil
	}
	c.cancel = cancel
	var target string
	if continueLast && len(c.state.Messages) > 0 {
		target = c.state.Messages[len(c.state.Messages)-1].ID
	}
	c.mu.Unlock()

	for step := 0; step < c.maxSteps; step++ {
		s := c.Snapshot()
		req := model.Request{
			Instructions: c.renderInstructions(s),
			Messages:     s.Messages,
			Tools:        c.toolDefs,
			Stream:       c.stream,
		}

		start := time.Now()
		final, err := c.step(ctx, runID, req, &target)
		c.logGeneration(time.Since(start), err)
		if err != nil {
			return c.fail(runID, err)
		}

		calls := toolCalls(final)
		if len(calls) == 0 {
			c.finish(runID)
			return nil
		}

		done, err := c.executeTools(ctx, runID, target, calls)
		if err != nil {
			return c.fail(runID, err)
		}
		if !done {
			// Client-side calls wait for AddToolResult.
			c.finish(runID)
			return nil
		}
	}

	c.logger.Warn("chat.max_steps_reached", "chat_id", c.id, "max_steps", c.maxSteps)
	c.finish(runID)
	return nil
}

// step runs one model round trip and mirrors its output into the target
// assistant message. It returns the final parts of the round trip.
func (c *Chat) step(ctx context.Context, runID uint64, req model.Request, target *string) ([]core.Part, error) {
	base := c.partsOf(*target)
	meta := c.metadata("")

	respCh, errCh := c.model.Generate(ctx, req)

	var (
		text     strings.Builder
		final    []core.Part
		gotFinal bool
	)

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			drain(respCh, errCh)
			return nil, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			var parts []core.Part
			if r.Partial {
				text.WriteString(r.Text())
				parts = joinParts(base, core.TextPart{Text: text.String()})
			} else {
				final = r.Parts
				gotFinal = true
				meta = c.metadata(r.FinishReason)
				parts = joinParts(base, final...)
			}
			if !c.writeReply(runID, target, parts, meta) {
				drain(respCh, errCh)
				return nil, errStale
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				drain(respCh, errCh)
				return nil, err
			}
		}
	}

	if !gotFinal && text.Len() > 0 {
		final = []core.Part{core.TextPart{Text: text.String()}}
	}

	return final, nil
}

// writeReply sets the parts of the target assistant message, creating the
// message on first use, and marks the chat as streaming.
func (c *Chat) writeReply(runID uint64, target *string, parts []core.Part, meta map[string]any) bool {
	return c.update(runID, func(s *core.ChatState) {
		s.Status = core.StatusStreaming

		idx := indexOf(s.Messages, *target)
		if idx < 0 {
			m := core.NewMessage(core.RoleAssistant, parts...)
			m.Metadata = meta
			*target = m.ID
			s.Messages = appendMessage(s.Messages, m)
			return
		}

		m := s.Messages[idx]
		m.Parts = parts
		m.Metadata = meta
		s.Messages = replaceMessage(s.Messages, idx, m)
	})
}

// executeTools runs the server-side tools among calls and appends their
// results. It reports false when a call has no registered tool.
func (c *Chat) executeTools(ctx context.Context, runID uint64, target string, calls []core.ToolCallPart) (bool, error) {
	done := true
	for _, call := range calls {
		t, ok := c.tools[call.ToolName]
		if !ok {
			done = false
			continue
		}

		result := c.callTool(ctx, t, call)

		ok = c.update(runID, func(s *core.ChatState) {
			idx := indexOf(s.Messages, target)
			if idx < 0 {
				return
			}
			s.Messages = replaceMessage(s.Messages, idx, s.Messages[idx].WithParts(result.Part()))
		})
		if !ok {
			return false, errStale
		}
	}
	return done, nil
}

func (c *Chat) callTool(ctx context.Context, t tool.Tool, call core.ToolCallPart) core.ToolResult {
	result := core.ToolResult{ToolCallID: call.ToolCallID, ToolName: call.ToolName}

	args := map[string]any{}
	if strings.TrimSpace(call.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			result.Error = fmt.Sprintf("invalid arguments: %v", err)
			return result
		}
	}

	ctx = tool.WithLogger(tool.WithCallID(ctx, call.ToolCallID), c.logger)

	start := time.Now()
	out, err := t.Call(ctx, args)
	c.logToolCall(call.ToolName, time.Since(start), err)

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Output = out
	return result
}

func (c *Chat) finish(runID uint64) {
	c.update(runID, func(s *core.ChatState) {
		s.Status = core.StatusReady
		c.cancel = nil
	})
}

func (c *Chat) fail(runID uint64, err error) error {
	if errors.Is(err, errStale) {
		return nil
	}

	err = fmt.Errorf("chat: generate: %w", err)
	if !c.update(runID, func(s *core.ChatState) {
		s.Status = core.StatusError
		s.Error = err
		c.cancel = nil
		c.interrupted = true
	}) {
		return nil
	}

	c.logger.Error("chat.generate.failed", "chat_id", c.id, "error", err.Error())
	return err
}

func (c *Chat) partsOf(id string) []core.Part {
	if id == "" {
		return nil
	}
	s := c.Snapshot()
	if idx := indexOf(s.Messages, id); idx >= 0 {
		return s.Messages[idx].Parts
	}
	return nil
}

func (c *Chat) metadata(finishReason string) map[string]any {
	info := c.model.Info()
	meta := map[string]any{
		"model":    info.Name,
		"provider": info.Provider,
	}
	if finishReason != "" {
		meta["finish_reason"] = finishReason
	}
	return meta
}

func (c *Chat) logGeneration(d time.Duration, err error) {
	if l, ok := c.logger.(interface {
		LogGeneration(model string, duration time.Duration, err error)
	}); ok {
		l.LogGeneration(c.model.Info().Name, d, err)
		return
	}
	c.logger.Debug("chat.generation", "model", c.model.Info().Name, "duration_ms", d.Milliseconds())
}

func (c *Chat) logToolCall(name string, d time.Duration, err error) {
	if l, ok := c.logger.(interface {
		LogToolCall(tool string, duration time.Duration, err error)
	}); ok {
		l.LogToolCall(name, d, err)
		return
	}
	c.logger.Debug("chat.tool_call", "tool", name, "duration_ms", d.Milliseconds())
}

func toolCalls(parts []core.Part) []core.ToolCallPart {
	var calls []core.ToolCallPart
	for _, p := range parts {
		if tc, ok := p.(core.ToolCallPart); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

func joinParts(base []core.Part, extra ...core.Part) []core.Part {
	out := make([]core.Part, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func indexOf(msgs []core.Message, id string) int {
	if id == "" {
		return -1
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].ID == id {
			return i
		}
	}
	return -1
}

// drain consumes whatever a model still sends so its goroutine can exit.
func drain(respCh <-chan model.Response, errCh <-chan error) {
	go func() {
		for respCh != nil || errCh != nil {
			select {
			case _, ok := <-respCh:
				if !ok {
					respCh = nil
				}
			case _, ok := <-errCh:
				if !ok {
					errCh = nil
				}
			}
		}
	}()
}
