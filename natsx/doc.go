// Package natsx provides OpenTelemetry instrumentation for NATS JetStream
// as the event transport between agent processes.
//
// Agent runtimes commonly ship run and tool events over a broker to a
// separate worker fleet. This package traces both directions: the publisher
// creates producer spans and injects trace context into message headers,
// and the consumer side extracts that context and opens process spans so a
// run's trace spans both processes.
//
// Two domain rules apply on top of plain messaging instrumentation:
//
//   - A publish issued from a suppressed context produces no span. The
//     message is still delivered with the caller's trace headers.
//   - When a process span ends, pending tool outcomes recorded against it
//     are drained onto the span as indexed attributes.
//
// # Publishing
//
//	pub := natsx.NewPublisher(js)
//	ack, err := pub.Publish(ctx, "agentops.events.run", payload)
//
// # Consuming
//
//	consumer.Consume(natsx.Handler(func(msg *natsx.TracedMsg) {
//	    ctx := msg.Context()
//	    handleEvent(ctx, msg.Data())
//	    msg.Ack()
//	}))
package natsx
