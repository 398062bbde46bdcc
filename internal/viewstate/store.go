// Package viewstate holds the per-view record cache: the records a single
// view is currently displaying, plus its loading and error state. Each
// store instance is owned by exactly one view and accessed only from the
// program's update loop, so there is no internal locking.
package viewstate

// Store caches one collection for one view. Fetches are tagged with a
// per-store sequence number; a response that is not for the most recently
// issued fetch is discarded, so the view always reflects the latest
// request it made regardless of response arrival order.
type Store[T any] struct {
	key     func(T) int64
	records []T
	loading bool
	err     error
	issued  uint64
}

// New creates an empty store. key extracts a record's identifier, used by
// Splice and Remove.
func New[T any](key func(T) int64) *Store[T] {
	return &Store[T]{key: key}
}

// Begin marks the start of a fetch and returns its sequence number. The
// caller passes the same number to Resolve when the response arrives.
func (s *Store[T]) Begin() uint64 {
	s.issued++
	s.loading = true
	return s.issued
}

// Resolve applies a fetch outcome. A response whose seq is not the latest
// issued is dropped and the store is left untouched; Resolve reports
// whether the response was applied.
//
// On success the records are replaced wholesale and any prior error is
// cleared. On failure the prior records are kept as-is (stale-but-present
// beats an emptied view) and the error is recorded.
func (s *Store[T]) Resolve(seq uint64, records []T, err error) bool {
	if seq != s.issued {
		return false
	}
	s.loading = false
	if err != nil {
		s.err = err
		return true
	}
	s.records = records
	s.err = nil
	return true
}

// Append inserts a record at the end of the cached sequence, used after a
// create. The server's ordering is only restored on the next full fetch,
// which always wins over appended records.
func (s *Store[T]) Append(rec T) {
	s.records = append(s.records, rec)
}

// Splice replaces the cached record with the same key, used after the
// backend confirms an edit. It reports whether a record was replaced.
func (s *Store[T]) Splice(rec T) bool {
	id := s.key(rec)
	for i := range s.records {
		if s.key(s.records[i]) == id {
			s.records[i] = rec
			return true
		}
	}
	return false
}

// Remove drops the cached record with the given key, used after a
// confirmed delete. It reports whether a record was removed.
func (s *Store[T]) Remove(id int64) bool {
	for i := range s.records {
		if s.key(s.records[i]) == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

// Restore primes the store with records from the offline snapshot cache.
// It does not touch the sequence counter, so an in-flight or future fetch
// still replaces the restored data.
func (s *Store[T]) Restore(records []T) {
	s.records = records
}

// Records returns the cached records. Callers must not mutate the
// returned slice.
func (s *Store[T]) Records() []T { return s.records }

// Len returns the number of cached records.
func (s *Store[T]) Len() int { return len(s.records) }

// Loading reports whether the most recently issued fetch is unresolved.
func (s *Store[T]) Loading() bool { return s.loading }

// Err returns the error from the most recent resolved fetch, or nil.
func (s *Store[T]) Err() error { return s.err }
