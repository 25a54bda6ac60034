// Package agentops is an instrumentation SDK for LLM and agent workloads.
//
// At its center is a generic call-interception engine: wrap a target
// function once and every call through it produces exactly one well-formed
// OpenTelemetry span, whether the call is unary, streaming, or scoped to a
// resource that is acquired and later released.
//
// # Overview
//
// The package provides:
//   - Interceptors for unary calls ([WrapFunc]), pull-based streams
//     ([WrapRecv]), channel streams ([WrapChan]), and scoped resources
//     ([WrapScoped]) with guaranteed single finalization
//   - Pluggable attribute extraction ([Extractor], [Aggregator]) whose
//     failures never alter the behavior of the wrapped call
//   - A declarative [Registry] that installs and reverses wrappers by
//     target path ([BindFunc], [BindRecv], [BindChan], [BindScoped])
//   - A bounded [CorrelationStore] that lets nested operations (tool calls)
//     attach data to an ancestor span identified only by its span ID
//   - A suppression flag ([Suppress]) that turns every interceptor into a
//     pass-through for the current call stack
//   - Config-driven tracer/logger/meter providers with OTLP, console, and
//     nop exporters
//
// # Quick Start
//
// Initialize the tracer provider and global tracer:
//
//	cfg, err := agentops.LoadConfig("agentops.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tp, err := agentops.NewTracerProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tp.Shutdown(ctx)
//	agentops.InitTracing(tp.Tracer("my-agent"), agentops.DefaultNamer{})
//
// Wrap a client call site and install it:
//
//	var createCompletion agentops.Func[*genai.ChatRequest, *genai.ChatResponse] = client.Create
//
//	registry := agentops.NewRegistry()
//	registry.Install(agentops.BindFunc(agentops.WrapConfig{
//	    Target: "openai.chat.completions.create",
//	    Name:   "chat",
//	    Kind:   trace.SpanKindClient,
//	}, &createCompletion, genai.ChatExtractor("openai", false)))
//
// Every call through createCompletion now opens a span as a child of the
// ambient span, runs the extractor before and after the call, and
// finalizes the span exactly once. Uninstall restores the original.
//
// # Streaming
//
// Streaming targets keep one span open across the whole consumption. The
// span is finalized when the stream reports io.EOF (status OK, final
// attributes from the [Aggregator]), when any other error is returned
// (status ERROR), or when the context is cancelled. A caller that abandons
// a [Receiver] without draining it leaves the span open; use the scoped
// form or [Lazy.Do] when closure must be guaranteed on all paths.
//
// # Tool Correlation
//
// A tool executed during an agent turn often needs to attach its outcome
// to the agent's span rather than to whatever span is current when the
// tool runs. Record entries against the ancestor's span ID and drain them
// when the ancestor finalizes:
//
//	agentops.Record(parentSpanID, map[string]any{"name": "calc", "result": "4"})
//	// ... later, on the ancestor's finalize path:
//	agentops.DrainAndAttach(parentSpan)
//
// # Sub-packages
//
// The genai sub-package carries gen_ai.* attribute extractors and stream
// aggregation for chat-completion style calls. The httpx, grpcx, and natsx
// sub-packages provide suppression-aware transport instrumentation.
package agentops
