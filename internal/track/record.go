// Package track keeps the per-resource reconciliation records: what
// generation was last applied, the external id the management API assigned,
// and how often the current attempt has failed. Records are derived state —
// they are rebuilt from resource status after a restart and removed once the
// source resource is deleted and remote cleanup has succeeded.
package track

import (
	"sync"
	"time"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
)

// Backoff schedule for retryable failures and dependency waits.
const (
	// BaseDelay is the first retry delay.
	BaseDelay = 5 * time.Second
	// MaxDelay caps the exponential schedule.
	MaxDelay = 5 * time.Minute
	// MaxAttempts is the retry budget for retryable remote failures. Once
	// exhausted the resource goes to a terminal Error state so a broken
	// remote is not hammered forever.
	MaxAttempts = 10
)

// Key builds the record key for one resource. The kind is part of the key so
// resources of different kinds sharing a namespace/name never share a record.
func Key(kind, namespacedName string) string {
	return kind + "/" + namespacedName
}

// Record is the reconciler's memory of one resource.
type Record struct {
	// State mirrors the externally visible SyncState.
	State v1alpha1.SyncState
	// LastAppliedGeneration is the spec generation last converged remotely.
	LastAppliedGeneration int64
	// ObservedGeneration is the generation last seen by the reconciler. A
	// change restarts the retry budget.
	ObservedGeneration int64
	// ExternalID is the id assigned by the management API.
	ExternalID string
	// LastAppliedVersion is the spec version last converged remotely, used to
	// reject decreasing version changes.
	LastAppliedVersion string
	// Attempts counts consecutive retryable remote failures for the current
	// generation. Reset on success and on spec change.
	Attempts int32
	// Waits counts consecutive dependency-wait requeues. Kept separate from
	// Attempts: dependency waits back off but never exhaust a budget.
	Waits int32
	// LastError is the last failure, for log correlation.
	LastError string
	// LastTransition is when State last changed.
	LastTransition time.Time
}

// Store is a concurrency-safe record map keyed by Key.
// Controller-runtime already guarantees a single worker per key, so the lock
// only guards cross-key access from concurrent reconcilers.
type Store struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewStore returns an empty record store.
func NewStore() *Store {
	return &Store{records: map[string]*Record{}}
}

// Ensure returns the record for key, creating it in Pending state on first
// sight.
func (s *Store) Ensure(key string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		rec = &Record{State: v1alpha1.StatePending, LastTransition: time.Now()}
		s.records[key] = rec
	}
	return rec
}

// Get returns the record for key, or nil if the resource has never been
// reconciled.
func (s *Store) Get(key string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[key]
}

// Forget drops the record for key. Called once the source resource is
// deleted and remote cleanup has succeeded.
func (s *Store) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

// Transition moves the record to a new state, stamping the transition time.
func (r *Record) Transition(state v1alpha1.SyncState) {
	if r.State != state {
		r.State = state
		r.LastTransition = time.Now()
	}
}

// Backoff returns the delay before retry number n (1-based): 5s, 10s, 20s,
// ... capped at 5m. The schedule is deliberately monotonic and jitter-free so
// consecutive failures produce non-decreasing delays.
func Backoff(n int32) time.Duration {
	if n < 1 {
		n = 1
	}
	d := BaseDelay
	for i := int32(1); i < n; i++ {
		d *= 2
		if d >= MaxDelay {
			return MaxDelay
		}
	}
	if d > MaxDelay {
		return MaxDelay
	}
	return d
}
