// Package httpx provides suppression-aware HTTP client instrumentation.
//
// LLM SDKs talk to their vendors over HTTP. When such a call site is
// already wrapped by the interception engine, tracing the underlying HTTP
// request again would produce a duplicate child span for the same logical
// operation. The transport returned by [Transport] honors the engine's
// suppression flag: a request whose context is suppressed goes straight to
// the base transport, everything else is traced via otelhttp.
package httpx
