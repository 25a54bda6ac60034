package genai

import (
	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// ChatExtractor returns an extractor for unary chat-completion calls.
// With a nil response it captures request-time attributes (model, sampling
// parameters, and the prompt when captureContent is set); with a response
// it adds response id, model, finish reason, token usage, and the
// completion content when captureContent is set. Absent values are
// omitted, never written as empty.
func ChatExtractor(system string, captureContent bool) agentops.Extractor[*ChatRequest, *ChatResponse] {
	return func(req *ChatRequest, res **ChatResponse) agentops.AttributeMap {
		attrs := agentops.AttributeMap{
			attrSystem:        system,
			attrOperationName: OperationChat,
		}
		requestAttributes(attrs, req, captureContent)

		if res == nil || *res == nil {
			return attrs
		}
		response := *res

		attrs[attrResponseID] = response.ID
		attrs[attrResponseModel] = response.Model
		if response.FinishReason != "" {
			attrs[attrFinishReasons] = []string{response.FinishReason}
		}
		if response.Usage != nil {
			attrs[attrInputTokens] = response.Usage.InputTokens
			attrs[attrOutputTokens] = response.Usage.OutputTokens
		}
		if captureContent {
			attrs[attrCompletion] = response.Content
		}

		return attrs
	}
}

// ChatStreamExtractor returns the request-time extractor for streaming
// chat calls; response-side attributes come from [NewChatAggregator].
func ChatStreamExtractor(system string, captureContent bool) agentops.RequestExtractor[*ChatRequest] {
	return func(req *ChatRequest) agentops.AttributeMap {
		attrs := agentops.AttributeMap{
			attrSystem:        system,
			attrOperationName: OperationChat,
			attrRequestStream: true,
		}
		requestAttributes(attrs, req, captureContent)

		return attrs
	}
}

// requestAttributes writes request-side attributes, omitting zero values.
func requestAttributes(attrs agentops.AttributeMap, req *ChatRequest, captureContent bool) {
	if req == nil {
		return
	}

	attrs[attrRequestModel] = req.Model
	if req.Temperature > 0 {
		attrs[attrRequestTemp] = req.Temperature
	}
	if req.TopP > 0 {
		attrs[attrRequestTopP] = req.TopP
	}
	if req.MaxTokens > 0 {
		attrs[attrRequestMaxTok] = req.MaxTokens
	}
	if req.Stream {
		attrs[attrRequestStream] = true
	}
	if captureContent && len(req.Messages) > 0 {
		attrs[attrPrompt] = req.Messages
	}
}
