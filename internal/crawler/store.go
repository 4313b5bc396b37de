package crawler

import "sync"

// URLStore tracks claimed, pending, and previously-archived URLs under a
// single mutex. The claim-or-skip and accept-new-pending sequences are each
// one critical section, which is what prevents two workers from ever fetching
// the same URL concurrently.
type URLStore struct {
	mu       sync.Mutex
	crawled  map[string]struct{}
	pending  map[string]struct{}
	existing map[string]struct{}
}

// NewURLStore builds a store. existing is the snapshot of filenames already
// present in the output directory from a prior run; it is read-only for the
// lifetime of the store.
func NewURLStore(existing map[string]struct{}) *URLStore {
	if existing == nil {
		existing = make(map[string]struct{})
	}
	return &URLStore{
		crawled:  make(map[string]struct{}),
		pending:  make(map[string]struct{}),
		existing: existing,
	}
}

// Claim atomically marks a URL as crawled and grants the caller exclusive
// right to process it. It returns false when the URL was already claimed this
// run or its archive file survives from a prior run; the caller must then skip
// all further work for that URL.
func (s *URLStore) Claim(rawURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.crawled[rawURL]; ok {
		return false
	}
	if _, ok := s.existing[EncodeFilename(rawURL)]; ok {
		return false
	}
	s.crawled[rawURL] = struct{}{}
	return true
}

// MarkPending records newly discovered URLs and returns only the ones that
// were neither crawled nor already pending, so the caller knows exactly what
// to schedule next generation.
func (s *URLStore) MarkPending(urls []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var delta []string
	for _, u := range urls {
		if _, ok := s.crawled[u]; ok {
			continue
		}
		if _, ok := s.pending[u]; ok {
			continue
		}
		s.pending[u] = struct{}{}
		delta = append(delta, u)
	}
	return delta
}

// CrawledCount returns the number of URLs claimed so far.
func (s *URLStore) CrawledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.crawled)
}

// PendingCount returns the number of URLs accepted for scheduling so far.
func (s *URLStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
