package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatstore/core"
	"github.com/hupe1980/chatstore/model"
)

func TestBuildMessages(t *testing.T) {
	assistant := core.NewMessage(core.RoleAssistant,
		core.ToolCallPart{ToolCallID: "c1", ToolName: "get_weather", Arguments: `{"location":"tokyo"}`},
		core.ToolResultPart{ToolCallID: "c1", ToolName: "get_weather", Output: map[string]any{"condition": "rainy"}},
		core.TextPart{Text: "It is rainy in Tokyo."},
	)

	msgs := BuildMessages(model.Request{
		Instructions: "be brief",
		Messages:     []core.Message{core.NewUserMessage("weather in tokyo?"), assistant},
	})

	require.Len(t, msgs, 5)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "get_weather", msgs[2].OfAssistant.ToolCalls[0].Function.Name)
	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "c1", msgs[3].OfTool.ToolCallID)
	assert.NotNil(t, msgs[4].OfAssistant)
	assert.Empty(t, msgs[4].OfAssistant.ToolCalls)
}

func TestFinalPartsOrdersToolCallsByIndex(t *testing.T) {
	parts := finalParts("hi", map[int64]*aggCall{
		1: {id: "b", name: "search", args: "{}"},
		0: {id: "a", name: "calculate", args: "{}"},
	})

	require.Len(t, parts, 3)
	assert.Equal(t, core.TextPart{Text: "hi"}, parts[0])
	assert.Equal(t, "a", parts[1].(core.ToolCallPart).ToolCallID)
	assert.Equal(t, "b", parts[2].(core.ToolCallPart).ToolCallID)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.Model = "gpt-test" })
	assert.Equal(t, "gpt-test", m.Info().Name)
	assert.Equal(t, "openai", m.Info().Provider)
}
