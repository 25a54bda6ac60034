// Package genai provides attribute extraction for chat-completion style
// LLM calls, following the OpenTelemetry gen_ai.* semantic conventions.
//
// It is the reference handler family for the interception engine in the
// root package: [ChatExtractor] maps requests and responses to span
// attributes, [NewChatAggregator] accumulates streamed deltas into final
// attributes, and [RecordToolCall] queues tool outcomes against an
// ancestor span via the correlation store.
//
// Handlers are pure functions over the call's inputs and outputs. They
// omit absent values instead of writing empty ones, and they only record
// prompt or completion content when content capture is opted in.
package genai
