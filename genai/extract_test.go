package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatRequest() *ChatRequest {
	return &ChatRequest{
		Model:       "gpt-4o",
		Temperature: 0.7,
		MaxTokens:   256,
		Messages: []Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
	}
}

func TestChatExtractor_RequestPhase(t *testing.T) {
	extract := ChatExtractor(SystemOpenAI, false)

	attrs := extract(chatRequest(), nil)

	assert.Equal(t, "openai", attrs["gen_ai.system"])
	assert.Equal(t, "chat", attrs["gen_ai.operation.name"])
	assert.Equal(t, "gpt-4o", attrs["gen_ai.request.model"])
	assert.Equal(t, 0.7, attrs["gen_ai.request.temperature"])
	assert.Equal(t, 256, attrs["gen_ai.request.max_tokens"])

	// Zero-valued sampling params and content are omitted.
	assert.NotContains(t, attrs, "gen_ai.request.top_p")
	assert.NotContains(t, attrs, "gen_ai.prompt")
	assert.NotContains(t, attrs, "gen_ai.response.id")
}

func TestChatExtractor_ResponsePhase(t *testing.T) {
	extract := ChatExtractor(SystemOpenAI, false)

	res := &ChatResponse{
		ID:           "resp-1",
		Model:        "gpt-4o-2024-08-06",
		Content:      "hi there",
		FinishReason: "stop",
		Usage:        &Usage{InputTokens: 12, OutputTokens: 3},
	}
	attrs := extract(chatRequest(), &res)

	assert.Equal(t, "resp-1", attrs["gen_ai.response.id"])
	assert.Equal(t, "gpt-4o-2024-08-06", attrs["gen_ai.response.model"])
	assert.Equal(t, []string{"stop"}, attrs["gen_ai.response.finish_reasons"])
	assert.Equal(t, 12, attrs["gen_ai.usage.input_tokens"])
	assert.Equal(t, 3, attrs["gen_ai.usage.output_tokens"])
	assert.NotContains(t, attrs, "gen_ai.completion")
}

func TestChatExtractor_CaptureContent(t *testing.T) {
	extract := ChatExtractor(SystemAnthropic, true)

	req := chatRequest()
	res := &ChatResponse{ID: "resp-1", Model: "claude", Content: "hi there"}
	attrs := extract(req, &res)

	assert.Equal(t, req.Messages, attrs["gen_ai.prompt"])
	assert.Equal(t, "hi there", attrs["gen_ai.completion"])
}

func TestChatExtractor_NilRequest(t *testing.T) {
	extract := ChatExtractor(SystemOpenAI, false)

	attrs := extract(nil, nil)
	require.NotNil(t, attrs)
	assert.Equal(t, "openai", attrs["gen_ai.system"])
	assert.NotContains(t, attrs, "gen_ai.request.model")
}

func TestChatStreamExtractor(t *testing.T) {
	extract := ChatStreamExtractor(SystemOpenAI, false)

	attrs := extract(chatRequest())

	assert.Equal(t, "openai", attrs["gen_ai.system"])
	assert.Equal(t, "chat", attrs["gen_ai.operation.name"])
	assert.Equal(t, "gpt-4o", attrs["gen_ai.request.model"])
	assert.Equal(t, true, attrs["gen_ai.request.stream"])
}
