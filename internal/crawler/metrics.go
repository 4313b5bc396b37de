package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched tracks the number of pages fetched with HTTP 200.
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recrawl_pages_fetched_total",
		Help: "The total number of pages fetched successfully.",
	})
	// PagesSaved tracks the number of pages written to the archive.
	PagesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recrawl_pages_saved_total",
		Help: "The total number of pages written to the output directory.",
	})
	// SaveErrors tracks archive write failures.
	SaveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recrawl_save_errors_total",
		Help: "The total number of failed page writes.",
	})
	// FetchErrors tracks URLs abandoned after a status error or exhausted retries.
	FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recrawl_fetch_errors_total",
		Help: "The total number of URLs whose fetch ultimately failed.",
	})
	// FetchRetries tracks individual retry attempts after transport failures.
	FetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recrawl_fetch_retries_total",
		Help: "The total number of fetch attempts retried after transport errors.",
	})
	// ProxiesInvalidated tracks proxies removed from the trusted set.
	ProxiesInvalidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recrawl_proxies_invalidated_total",
		Help: "The total number of proxies marked invalid after a failure.",
	})
	// LinksDiscovered tracks newly accepted in-scope URLs.
	LinksDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recrawl_links_discovered_total",
		Help: "The total number of new in-scope URLs scheduled for crawling.",
	})
)
