package crawler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestURLStoreClaim(t *testing.T) {
	t.Parallel()

	store := NewURLStore(nil)

	require.True(t, store.Claim("https://example.com/a"))
	require.False(t, store.Claim("https://example.com/a"))
	require.True(t, store.Claim("https://example.com/b"))
	require.Equal(t, 2, store.CrawledCount())
}

func TestURLStoreClaimSkipsPriorRunFiles(t *testing.T) {
	t.Parallel()

	saved := "https://example.com/saved"
	existing := map[string]struct{}{
		EncodeFilename(saved): {},
	}
	store := NewURLStore(existing)

	require.False(t, store.Claim(saved))
	require.True(t, store.Claim("https://example.com/fresh"))
	require.Equal(t, 1, store.CrawledCount())
}

func TestURLStoreMarkPending(t *testing.T) {
	t.Parallel()

	store := NewURLStore(nil)
	require.True(t, store.Claim("https://example.com/a"))

	delta := store.MarkPending([]string{
		"https://example.com/a", // already crawled
		"https://example.com/b",
		"https://example.com/c",
	})
	require.Equal(t, []string{"https://example.com/b", "https://example.com/c"}, delta)

	// Re-offering the same URLs yields an empty delta.
	delta = store.MarkPending([]string{"https://example.com/b", "https://example.com/c"})
	require.Empty(t, delta)
	require.Equal(t, 2, store.PendingCount())
}

func TestURLStoreConcurrentClaim(t *testing.T) {
	t.Parallel()

	store := NewURLStore(nil)
	const workers = 32

	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- store.Claim("https://example.com/contested")
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for won := range wins {
		if won {
			winners++
		}
	}
	require.Equal(t, 1, winners)
	require.Equal(t, 1, store.CrawledCount())
}
