package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/chatstore/internal/util"
)

// FunctionTool runs a plain Go function when the model calls it during a
// chat turn. Arguments arrive as the decoded JSON object of the tool call;
// they are checked against parameters before fn sees them. The value fn
// returns becomes the Output of the tool result part appended to the
// assistant message, and an error becomes its Error text.
//
// The ctx passed to fn is the generation context of the chat, so Stop
// cancels a running tool. CallID and LoggerFrom read the tool call id and the
// chat logger from it.
//
// A FunctionTool is immutable after construction.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool wraps fn under name with an explicit parameter schema.
// The schema uses the JSON Schema subset understood by
// util.ValidateParameters (type, properties, required, enum).
//
// A weather lookup for the chat CLI:
//
//	weather := NewFunctionTool(
//	  "get_weather",
//	  "Get the current weather for a city",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "location": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"location"},
//	  },
//	  func(ctx context.Context, args map[string]any) (any, error) {
//	    return lookupWeather(ctx, args["location"].(string))
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct is NewFunctionTool with the schema derived from
// the json and description tags of structType (see util.CreateSchema).
//
//	type CalculateArgs struct {
//	  Expression string `json:"expression" description:"Arithmetic like 6 * 7"`
//	}
//
//	calc := NewFunctionToolFromStruct("calculate", "Evaluate an arithmetic expression",
//	  CalculateArgs{}, func(_ context.Context, args map[string]any) (any, error) {
//	    return evaluate(args["expression"].(string))
//	  })
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	schema := util.CreateSchema(structType)
	return NewFunctionTool(name, description, schema, fn)
}

// Name returns the name the model calls the tool by.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the text shown to the model.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the argument schema.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args and runs the function. A *ToolError returned by the
// function is passed through; a schema mismatch yields CodeValidation and any
// other error CodeExecution.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	logger := LoggerFrom(ctx)
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "call_id", CallID(ctx))

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)

			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
