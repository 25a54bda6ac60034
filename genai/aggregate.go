package genai

import (
	"strings"

	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// chatAggregator accumulates streamed chat deltas for one stream: the
// concatenated content, the chunk count, and whatever finish reason and
// usage the final chunks carry. One instance serves one stream and is
// only touched from the consuming goroutine.
type chatAggregator struct {
	content        strings.Builder
	chunks         int
	finishReason   string
	usage          *Usage
	captureContent bool
}

// NewChatAggregator returns a factory producing one aggregator per stream,
// for use with [agentops.WrapRecv] and [agentops.WrapChan].
func NewChatAggregator(captureContent bool) func() agentops.Aggregator[ChatDelta] {
	return func() agentops.Aggregator[ChatDelta] {
		return &chatAggregator{captureContent: captureContent}
	}
}

// Add observes one streamed delta.
func (a *chatAggregator) Add(delta ChatDelta) {
	a.chunks++
	a.content.WriteString(delta.Content)
	if delta.FinishReason != "" {
		a.finishReason = delta.FinishReason
	}
	if delta.Usage != nil {
		a.usage = delta.Usage
	}
}

// Finish returns the attributes computed from the accumulated stream.
func (a *chatAggregator) Finish() agentops.AttributeMap {
	attrs := agentops.AttributeMap{
		attrStreamChunks: a.chunks,
	}
	if a.finishReason != "" {
		attrs[attrFinishReasons] = []string{a.finishReason}
	}
	if a.usage != nil {
		attrs[attrInputTokens] = a.usage.InputTokens
		attrs[attrOutputTokens] = a.usage.OutputTokens
	}
	if a.captureContent {
		attrs[attrCompletion] = a.content.String()
	}

	return attrs
}
