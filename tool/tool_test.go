package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatstore/logging"
)

func sumTool() *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	return NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		a := args["a"].(float64)
		b := args["b"].(float64)
		return a + b, nil
	})
}

func TestFunctionTool_Success(t *testing.T) {
	result, err := sumTool().Call(WithCallID(t.Context(), "fc1"), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	_, err := sumTool().Call(t.Context(), map[string]any{"a": 1.0})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)

	var ve *ValidationError
	require.ErrorAs(t, toolErr.Details.(error), &ve)
	assert.Equal(t, "b", ve.Field)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := execTool.Call(t.Context(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_ForwardsToolError(t *testing.T) {
	params := map[string]any{"type": "object"}
	custom := NewFunctionTool("custom", "Custom", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, fmt.Errorf("wrapped: %w", NewToolError("custom", "no data", "NO_DATA"))
	})

	_, err := custom.Call(t.Context(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "NO_DATA", toolErr.Code)
}

func TestFunctionToolFromStruct(t *testing.T) {
	type args struct {
		Query string `json:"query" description:"Search query"`
	}
	ft := NewFunctionToolFromStruct("search", "Search", args{}, func(ctx context.Context, a map[string]any) (any, error) {
		return CallID(ctx) + ":" + a["query"].(string), nil
	})

	res, err := ft.Call(WithCallID(t.Context(), "c9"), map[string]any{"query": "go"})
	require.NoError(t, err)
	assert.Equal(t, "c9:go", res)
	assert.Equal(t, []string{"query"}, ft.Parameters()["required"])
}

func TestContextLogger(t *testing.T) {
	assert.IsType(t, logging.NoOpLogger{}, LoggerFrom(t.Context()))

	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "text", Output: &buf})
	ctx := WithLogger(WithCallID(t.Context(), "call-log"), logger)

	_, err := sumTool().Call(ctx, map[string]any{"a": 1.0, "b": 1.0})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "tool.call.start")
	assert.Contains(t, buf.String(), "call_id=call-log")
	assert.Contains(t, buf.String(), "tool.call.success")
}

func TestFunctionTool_SeesCallerCancellation(t *testing.T) {
	ft := NewFunctionTool("get_weather", "Get the weather", map[string]any{"type": "object"},
		func(ctx context.Context, _ map[string]any) (any, error) {
			return nil, ctx.Err()
		})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := ft.Call(ctx, map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Contains(t, toolErr.Message, context.Canceled.Error())
}

func TestDefinitions(t *testing.T) {
	assert.Nil(t, Definitions(nil))

	defs := Definitions([]Tool{sumTool()})
	require.Len(t, defs, 1)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "sum", defs[0].Function.Name)
	assert.Equal(t, "Add numbers", defs[0].Function.Description)
}

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")
	assert.Equal(t, "tool error in demo: x", (&ToolError{Tool: "demo", Message: "x"}).Error())
}
