package genai

import (
	"go.opentelemetry.io/otel/trace"

	agentops "github.com/AgentOps-AI/agentops-sub000"
)

// ToolCall is the outcome of one tool execution.
type ToolCall struct {
	Name      string
	CallID    string
	Arguments string
	Result    string
	Err       error
}

// RecordToolCall queues a tool outcome against the span that owns it,
// typically the agent-turn span under which the tool ran. The owner is
// identified by span ID alone; the two operations need not be in a direct
// call relationship. The entry is attached when the owner's finalize path
// calls [agentops.DrainAndAttach], producing indexed "tool.{i}.*"
// attributes.
func RecordToolCall(owner trace.SpanID, call ToolCall) {
	entry := map[string]any{
		toolFieldName: call.Name,
	}
	if call.CallID != "" {
		entry[toolFieldCallID] = call.CallID
	}
	if call.Arguments != "" {
		entry[toolFieldArguments] = call.Arguments
	}
	if call.Result != "" {
		entry[toolFieldResult] = call.Result
	}
	if call.Err != nil {
		entry[toolFieldError] = call.Err.Error()
	}

	agentops.Record(owner, entry)
}
