// Package crawler implements the recursive crawl engine: the frontier and
// visited-set bookkeeping, the proxy-rotating fetch client, the page archive,
// and the generation-by-generation orchestrator.
package crawler
