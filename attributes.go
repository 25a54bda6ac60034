package agentops

import (
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// AttributeMap is a set of span attributes keyed by namespaced strings
// (e.g. "gen_ai.usage.input_tokens"). Values are primitives or complex
// values that will be JSON-serialized. Nil values, empty strings, and
// empty collections are omitted during conversion; extractors should skip
// a key rather than write a null placeholder.
type AttributeMap map[string]any

// Merge copies all entries of other into m, overwriting existing keys.
// Last write wins per key.
func (m AttributeMap) Merge(other AttributeMap) {
	for k, v := range other {
		m[k] = v
	}
}

// KeyValues converts the map into OTel attributes.
// Unsupported value types are JSON-serialized into a string attribute.
func (m AttributeMap) KeyValues() []attribute.KeyValue {
	if len(m) == 0 {
		return nil
	}

	attrs := make([]attribute.KeyValue, 0, len(m))
	for k, v := range m {
		if k == "" || v == nil {
			continue
		}
		if kv, ok := keyValue(k, v); ok {
			attrs = append(attrs, kv)
		}
	}

	return attrs
}

// keyValue converts a single entry, reporting false for values that must
// be omitted (empty strings, empty collections).
func keyValue(key string, value any) (attribute.KeyValue, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return attribute.KeyValue{}, false
		}

		return attribute.String(key, v), true
	case bool:
		return attribute.Bool(key, v), true
	case int:
		return attribute.Int(key, v), true
	case int32:
		return attribute.Int64(key, int64(v)), true
	case int64:
		return attribute.Int64(key, v), true
	case uint:
		return attribute.Int64(key, int64(v)), true //nolint:gosec // attribute values are small counters
	case uint32:
		return attribute.Int64(key, int64(v)), true
	case float32:
		return attribute.Float64(key, float64(v)), true
	case float64:
		return attribute.Float64(key, v), true
	case time.Duration:
		return attribute.Int64(key, v.Milliseconds()), true
	case []string:
		if len(v) == 0 {
			return attribute.KeyValue{}, false
		}

		return attribute.StringSlice(key, v), true
	case []int:
		if len(v) == 0 {
			return attribute.KeyValue{}, false
		}

		return attribute.IntSlice(key, v), true
	case []int64:
		if len(v) == 0 {
			return attribute.KeyValue{}, false
		}

		return attribute.Int64Slice(key, v), true
	case []float64:
		if len(v) == 0 {
			return attribute.KeyValue{}, false
		}

		return attribute.Float64Slice(key, v), true
	case []bool:
		if len(v) == 0 {
			return attribute.KeyValue{}, false
		}

		return attribute.BoolSlice(key, v), true
	default:
		return serializedValue(key, value)
	}
}

// serializedValue JSON-serializes complex values into a string attribute.
func serializedValue(key string, value any) (attribute.KeyValue, bool) {
	data, err := json.Marshal(value)
	if err != nil {
		return attribute.String(key, fmt.Sprintf("%v", value)), true
	}
	if len(data) == 0 || string(data) == "null" || string(data) == "{}" || string(data) == "[]" {
		return attribute.KeyValue{}, false
	}

	return attribute.String(key, string(data)), true
}

// Extractor computes span attributes from a call's request and, when
// available, its result. It is called once before the target runs with a
// nil result, and once after a successful call with the result populated.
// Extractors must be side-effect free; any panic is recovered, reported
// via otel.Handle, and never changes the outcome of the wrapped call.
type Extractor[Req, Res any] func(req Req, res *Res) AttributeMap

// RequestExtractor computes request-time attributes for streaming targets,
// where response attributes come from an [Aggregator] instead.
type RequestExtractor[Req any] func(req Req) AttributeMap

// safeExtract invokes an extractor, absorbing panics.
func safeExtract[Req, Res any](cfg WrapConfig, extract Extractor[Req, Res], req Req, res *Res) (attrs AttributeMap) {
	if extract == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			attrs = nil
			otel.Handle(fmt.Errorf("agentops: extractor for %q panicked: %v", cfg.Target, r))
		}
	}()

	return extract(req, res)
}

// safeExtractRequest invokes a request extractor, absorbing panics.
func safeExtractRequest[Req any](cfg WrapConfig, extract RequestExtractor[Req], req Req) (attrs AttributeMap) {
	if extract == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			attrs = nil
			otel.Handle(fmt.Errorf("agentops: extractor for %q panicked: %v", cfg.Target, r))
		}
	}()

	return extract(req)
}
