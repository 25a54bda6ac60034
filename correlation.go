package agentops

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// errCorrelationOverflow is reported via otel.Handle when an owner exceeds
// its per-owner entry limit; the overflowing entry is dropped.
var errCorrelationOverflow = errors.New("agentops: correlation entries dropped, per-owner limit reached")

// CorrelationStore is a process-wide side table mapping a span ID to
// pending records produced by nested operations. A deeply nested operation
// (e.g. a tool call inside an agent turn) records its outcome against an
// ancestor's span ID; the ancestor drains the queue onto itself before
// finalizing. Entries are keyed purely by span ID, never by object
// reference.
//
// The store is safe for concurrent use. Records for different owners never
// block each other; records for the same owner are serialized. Owners that
// never drain are bounded by per-owner entry limits, an owner cap, and TTL
// eviction, so an uninstrumented ancestor degrades into dropped entries
// rather than unbounded growth.
type CorrelationStore struct {
	prefix      string
	maxPerOwner int
	maxOwners   int
	ttl         time.Duration

	owners sync.Map // trace.SpanID -> *ownerQueue
	count  atomic.Int64
}

type ownerQueue struct {
	mu      sync.Mutex
	entries []map[string]any
	touched time.Time
}

// NewCorrelationStore creates a store with the given bounds. Zero or
// negative values fall back to the defaults of [DefaultCorrelationConfig].
func NewCorrelationStore(cfg *CorrelationConfig) *CorrelationStore {
	def := DefaultCorrelationConfig()
	if cfg == nil {
		cfg = def
	}

	s := &CorrelationStore{
		prefix:      cfg.Prefix,
		maxPerOwner: cfg.MaxEntriesPerOwner,
		maxOwners:   cfg.MaxOwners,
		ttl:         cfg.TTL,
	}
	if s.prefix == "" {
		s.prefix = def.Prefix
	}
	if s.maxPerOwner <= 0 {
		s.maxPerOwner = def.MaxEntriesPerOwner
	}
	if s.maxOwners <= 0 {
		s.maxOwners = def.MaxOwners
	}
	if s.ttl <= 0 {
		s.ttl = def.TTL
	}

	return s
}

// Record appends entry to the queue owned by owner, creating the queue if
// absent. Invalid owner IDs and empty entries are ignored. When the owner
// is already at its entry limit the entry is dropped and the condition
// reported via otel.Handle.
func (s *CorrelationStore) Record(owner trace.SpanID, entry map[string]any) {
	if !owner.IsValid() || len(entry) == 0 {
		return
	}

	q := s.queueFor(owner)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.touched = time.Now()
	if len(q.entries) >= s.maxPerOwner {
		otel.Handle(errCorrelationOverflow)
		return
	}
	q.entries = append(q.entries, entry)
}

// DrainAndAttach removes every entry queued for span's ID and writes each
// field as an indexed attribute ("prefix.{i}.{field}") on span. The read
// is destructive: a second drain for the same span is a no-op, so entries
// attach exactly once even if the finalize path runs twice.
func (s *CorrelationStore) DrainAndAttach(span trace.Span) {
	if span == nil {
		return
	}
	id := span.SpanContext().SpanID()
	if !id.IsValid() {
		return
	}

	v, ok := s.owners.LoadAndDelete(id)
	if !ok {
		return
	}
	s.count.Add(-1)

	q := v.(*ownerQueue)
	q.mu.Lock()
	entries := q.entries
	q.entries = nil
	q.mu.Unlock()

	for i, entry := range entries {
		attrs := make(AttributeMap, len(entry))
		for field, value := range entry {
			attrs[fmt.Sprintf("%s.%d.%s", s.prefix, i, field)] = value
		}
		span.SetAttributes(attrs.KeyValues()...)
	}
}

// Pending returns the number of entries queued for owner. Intended for
// inspection and tests.
func (s *CorrelationStore) Pending(owner trace.SpanID) int {
	v, ok := s.owners.Load(owner)
	if !ok {
		return 0
	}

	q := v.(*ownerQueue)
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// Owners returns the number of owners with queued entries.
func (s *CorrelationStore) Owners() int {
	return int(s.count.Load())
}

// queueFor returns the owner's queue, creating it if needed and evicting
// stale owners when the owner cap is exceeded.
func (s *CorrelationStore) queueFor(owner trace.SpanID) *ownerQueue {
	if v, ok := s.owners.Load(owner); ok {
		return v.(*ownerQueue)
	}

	v, loaded := s.owners.LoadOrStore(owner, &ownerQueue{touched: time.Now()})
	if !loaded {
		if s.count.Add(1) > int64(s.maxOwners) {
			s.evict(owner)
		}
	}

	return v.(*ownerQueue)
}

// evict removes expired owners, then the oldest owners until the store is
// back under its cap. keep is never evicted.
func (s *CorrelationStore) evict(keep trace.SpanID) {
	now := time.Now()

	type candidate struct {
		id      trace.SpanID
		touched time.Time
	}
	var oldest *candidate

	s.owners.Range(func(key, value any) bool {
		id := key.(trace.SpanID)
		if id == keep {
			return true
		}

		q := value.(*ownerQueue)
		q.mu.Lock()
		touched := q.touched
		q.mu.Unlock()

		if now.Sub(touched) > s.ttl {
			if _, ok := s.owners.LoadAndDelete(id); ok {
				s.count.Add(-1)
			}

			return true
		}
		if oldest == nil || touched.Before(oldest.touched) {
			oldest = &candidate{id: id, touched: touched}
		}

		return true
	})

	if s.count.Load() > int64(s.maxOwners) && oldest != nil {
		if _, ok := s.owners.LoadAndDelete(oldest.id); ok {
			s.count.Add(-1)
		}
	}
}

// defaultCorrelation is the process-wide store used by the package-level
// Record and DrainAndAttach functions.
var defaultCorrelation atomic.Pointer[CorrelationStore]

func init() {
	defaultCorrelation.Store(NewCorrelationStore(nil))
}

// InitCorrelation replaces the process-wide correlation store with one
// built from cfg. Call once during application initialization, before
// instrumented traffic starts.
func InitCorrelation(cfg *CorrelationConfig) {
	defaultCorrelation.Store(NewCorrelationStore(cfg))
}

// Record queues entry for owner on the process-wide store.
func Record(owner trace.SpanID, entry map[string]any) {
	defaultCorrelation.Load().Record(owner, entry)
}

// DrainAndAttach drains the process-wide store onto span.
func DrainAndAttach(span trace.Span) {
	defaultCorrelation.Load().DrainAndAttach(span)
}
