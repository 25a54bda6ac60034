package agentops

// SpanNamer defines how operation names are transformed into span names.
type SpanNamer interface {
	Name(operation string) string
}

// DefaultNamer returns operation names unchanged.
// This complies with OpenTelemetry semantic conventions which recommend
// using the raw operation name without service prefixes.
type DefaultNamer struct{}

// Name returns the operation name as is.
func (DefaultNamer) Name(operation string) string {
	return operation
}

// NameLLM returns a compliant span name for a model call: "operation model".
// Example: "chat gpt-4o"
func NameLLM(operation, model string) string {
	if model == "" {
		return operation
	}

	return operation + " " + model
}

// NameTool returns a compliant span name for a tool execution: "execute_tool name".
// Example: "execute_tool calculator"
func NameTool(tool string) string {
	return "execute_tool " + tool
}

// NameAgent returns a compliant span name for an agent turn: "invoke_agent name".
// Example: "invoke_agent researcher"
func NameAgent(agent string) string {
	return "invoke_agent " + agent
}

// NameWorkflow returns a compliant span name for a workflow run: "workflow name".
// Example: "workflow triage"
func NameWorkflow(workflow string) string {
	return "workflow " + workflow
}
