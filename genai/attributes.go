package genai

// Attribute keys following the OTel gen_ai semantic conventions.
const (
	attrSystem        = "gen_ai.system"
	attrOperationName = "gen_ai.operation.name"
	attrRequestModel  = "gen_ai.request.model"
	attrRequestMaxTok = "gen_ai.request.max_tokens"
	attrRequestTemp   = "gen_ai.request.temperature"
	attrRequestTopP   = "gen_ai.request.top_p"
	attrRequestStream = "gen_ai.request.stream"
	attrResponseID    = "gen_ai.response.id"
	attrResponseModel = "gen_ai.response.model"
	attrFinishReasons = "gen_ai.response.finish_reasons"
	attrInputTokens   = "gen_ai.usage.input_tokens"
	attrOutputTokens  = "gen_ai.usage.output_tokens"
	attrPrompt        = "gen_ai.prompt"
	attrCompletion    = "gen_ai.completion"
	attrStreamChunks  = "agentops.stream.chunk_count"
)

// Tool correlation entry fields, written by DrainAndAttach as
// "tool.{i}.name", "tool.{i}.arguments", "tool.{i}.result".
const (
	toolFieldName      = "name"
	toolFieldCallID    = "call_id"
	toolFieldArguments = "arguments"
	toolFieldResult    = "result"
	toolFieldError     = "error"
)

// Operation names per the gen_ai conventions.
const (
	OperationChat       = "chat"
	OperationCompletion = "text_completion"
	OperationEmbeddings = "embeddings"
)

// Well-known gen_ai.system values.
const (
	SystemOpenAI    = "openai"
	SystemAnthropic = "anthropic"
	SystemBedrock   = "bedrock"
	SystemGoogle    = "google"
	SystemMistral   = "mistral"
)
