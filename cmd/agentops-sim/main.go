// Package main provides the agentops-sim CLI tool for exercising the
// instrumentation engine against a simulated LLM backend and exporting
// the resulting traces over OTLP or to the console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	agentops "github.com/AgentOps-AI/agentops-sub000"
	"github.com/AgentOps-AI/agentops-sub000/genai"
)

func main() {
	cfg := parseFlags()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type simConfig struct {
	endpoint       string
	useHTTP        bool
	console        bool
	turns          int
	stream         bool
	captureContent bool
}

func parseFlags() *simConfig {
	cfg := &simConfig{}

	flag.StringVar(&cfg.endpoint, "endpoint", "localhost:4317", "OTLP endpoint")
	flag.BoolVar(&cfg.useHTTP, "http", false, "Use OTLP over HTTP instead of gRPC")
	flag.BoolVar(&cfg.console, "console", false, "Export to stdout instead of OTLP")
	flag.IntVar(&cfg.turns, "turns", 3, "Number of agent turns to simulate")
	flag.BoolVar(&cfg.stream, "stream", false, "Use streaming completions")
	flag.BoolVar(&cfg.captureContent, "capture-content", false, "Record prompts and completions")
	flag.Parse()

	return cfg
}

func run(ctx context.Context, sim *simConfig) error {
	cfg := buildConfig(sim)

	tp, err := agentops.NewTracerProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer provider: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	registry := installBindings(sim)
	defer registry.UninstallAll()

	fmt.Printf("Simulating %d agent turns (stream=%v)\n", sim.turns, sim.stream)

	for i := range sim.turns {
		if ctx.Err() != nil {
			fmt.Printf("\nInterrupted after %d turns\n", i)
			return nil
		}

		if err := agentTurn(ctx, sim, i+1); err != nil {
			return fmt.Errorf("turn %d failed: %w", i+1, err)
		}
		fmt.Printf("Turn %d/%d complete\n", i+1, sim.turns)
	}

	// Allow time for export
	time.Sleep(500 * time.Millisecond)
	fmt.Println("Done!")

	return nil
}

func buildConfig(sim *simConfig) *agentops.Config {
	enabled := true
	capture := sim.captureContent

	cfg := &agentops.Config{
		Enabled:     &enabled,
		ServiceName: "agentops-sim",
		Environment: "development",
		OTLP: &agentops.OTLPConfig{
			Endpoint: sim.endpoint,
			Protocol: "grpc",
		},
		Traces: &agentops.TracesConfig{
			Exporter: "otlp",
		},
		Instrumentation: &agentops.InstrumentationConfig{
			CaptureContent: &capture,
		},
	}

	if sim.useHTTP {
		cfg.OTLP.Protocol = "http/protobuf"
	}

	if sim.console {
		cfg.Traces.Exporter = "console"
	}

	return cfg
}

// completeChat stands in for a vendor SDK call. The simulator rebinds it
// through the registry the same way real instrumentation rebinds a client
// method.
var completeChat agentops.Func[*genai.ChatRequest, *genai.ChatResponse] = func(
	ctx context.Context,
	req *genai.ChatRequest,
) (*genai.ChatResponse, error) {
	time.Sleep(20 * time.Millisecond)

	return &genai.ChatResponse{
		ID:           "sim-response",
		Model:        req.Model,
		Content:      "Simulated answer to: " + lastUserMessage(req),
		FinishReason: "stop",
		Usage: &genai.Usage{
			InputTokens:  42,
			OutputTokens: 17,
		},
	}, nil
}

// streamChat is the streaming counterpart, yielding a few deltas then EOF.
var streamChat agentops.StreamFunc[*genai.ChatRequest, genai.ChatDelta] = func(
	ctx context.Context,
	req *genai.ChatRequest,
) (agentops.Receiver[genai.ChatDelta], error) {
	words := strings.Fields("Simulated streamed answer for " + req.Model)

	return &simStream{words: words}, nil
}

type simStream struct {
	words []string
	pos   int
}

func (s *simStream) Recv() (genai.ChatDelta, error) {
	if s.pos >= len(s.words) {
		return genai.ChatDelta{}, io.EOF
	}

	delta := genai.ChatDelta{Content: s.words[s.pos] + " "}
	s.pos++

	if s.pos == len(s.words) {
		delta.FinishReason = "stop"
		delta.Usage = &genai.Usage{InputTokens: 42, OutputTokens: len(s.words)}
	}

	return delta, nil
}

func installBindings(sim *simConfig) *agentops.Registry {
	registry := agentops.NewRegistry()

	registry.Install(agentops.BindFunc(
		agentops.WrapConfig{
			Target: "sim.chat.completions.create",
			Name:   "chat sim-model",
			Kind:   trace.SpanKindClient,
		},
		&completeChat,
		genai.ChatExtractor("simulator", sim.captureContent),
	))

	registry.Install(agentops.BindRecv(
		agentops.WrapConfig{
			Target: "sim.chat.completions.stream",
			Name:   "chat sim-model",
			Kind:   trace.SpanKindClient,
		},
		&streamChat,
		genai.ChatStreamExtractor("simulator", sim.captureContent),
		genai.NewChatAggregator(sim.captureContent),
	))

	return registry
}

func agentTurn(ctx context.Context, sim *simConfig, turn int) error {
	ctx, span := agentops.StartInternal(ctx, agentops.NameAgent("researcher"))
	defer span.End()

	owner := agentops.SpanID(ctx)

	req := &genai.ChatRequest{
		Model: "sim-model",
		Messages: []genai.Message{
			{Role: "user", Content: fmt.Sprintf("question %d", turn)},
		},
	}

	if sim.stream {
		if err := consumeStream(ctx, req); err != nil {
			return err
		}
	} else {
		if _, err := completeChat(ctx, req); err != nil {
			return err
		}
	}

	// Simulated tool executions attributed to the agent turn.
	genai.RecordToolCall(owner, genai.ToolCall{
		Name:      "calculator",
		CallID:    fmt.Sprintf("call-%d-1", turn),
		Arguments: `{"expression": "6*7"}`,
		Result:    "42",
	})
	genai.RecordToolCall(owner, genai.ToolCall{
		Name:   "web_search",
		CallID: fmt.Sprintf("call-%d-2", turn),
		Err:    errors.New("search backend unavailable"),
	})

	agentops.DrainAndAttach(span)
	agentops.SetSuccess(ctx)

	return nil
}

func consumeStream(ctx context.Context, req *genai.ChatRequest) error {
	stream, err := streamChat(ctx, req)
	if err != nil {
		return err
	}

	for {
		_, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func lastUserMessage(req *genai.ChatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}

	return ""
}
