package crawler

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
)

// ProxyPool partitions configured proxies into a trusted set and an invalid
// set. A proxy moves from trusted to invalid at most once per run and never
// returns. Safe for concurrent use.
type ProxyPool struct {
	mu      sync.Mutex
	trusted map[string]struct{}
	invalid map[string]struct{}
}

// NewProxyPool builds a pool from the given proxy endpoints. Duplicates and
// empty entries are dropped.
func NewProxyPool(proxies []string) *ProxyPool {
	p := &ProxyPool{
		trusted: make(map[string]struct{}, len(proxies)),
		invalid: make(map[string]struct{}),
	}
	for _, proxy := range proxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}
		p.trusted[proxy] = struct{}{}
	}
	return p
}

// LoadProxyList reads a newline-delimited proxy file, skipping blank lines.
func LoadProxyList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read proxy file %s: %w", path, err)
	}
	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

// Pick returns a proxy chosen uniformly at random from the trusted set. The
// second return value is false when the set is empty and the caller should
// connect directly.
func (p *ProxyPool) Pick() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.trusted) == 0 {
		return "", false
	}
	n := rand.Intn(len(p.trusted))
	for proxy := range p.trusted {
		if n == 0 {
			return proxy, true
		}
		n--
	}
	return "", false // unreachable
}

// MarkInvalid moves a proxy from trusted to invalid. It reports whether the
// proxy was actually moved; repeated calls for the same proxy are no-ops.
func (p *ProxyPool) MarkInvalid(proxy string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.trusted[proxy]; !ok {
		return false
	}
	delete(p.trusted, proxy)
	p.invalid[proxy] = struct{}{}
	return true
}

// Counts returns the current trusted and invalid set sizes.
func (p *ProxyPool) Counts() (trusted, invalid int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.trusted), len(p.invalid)
}
