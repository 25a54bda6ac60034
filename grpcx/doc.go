// Package grpcx provides suppression-aware OpenTelemetry instrumentation
// for gRPC clients and servers.
//
// Some LLM vendors expose gRPC transports. As with HTTP, an RPC issued from
// inside an intercepted call site must not produce a duplicate child span,
// so the client handler returned by [ClientHandler] consults the engine's
// suppression flag per RPC.
//
// # gRPC Client
//
//	conn, err := grpc.NewClient(target,
//	    grpc.WithStatsHandler(grpcx.ClientHandler()),
//	)
//
// # gRPC Server
//
//	server := grpc.NewServer(
//	    grpc.StatsHandler(grpcx.ServerHandler()),
//	)
package grpcx
