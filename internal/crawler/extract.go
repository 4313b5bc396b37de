package crawler

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// GoqueryExtractor extracts anchor hrefs from HTML using goquery.
type GoqueryExtractor struct{}

// NewGoqueryExtractor returns a goquery-backed link extractor.
func NewGoqueryExtractor() *GoqueryExtractor {
	return &GoqueryExtractor{}
}

// Extract returns the unique href attribute values of all anchors in body.
// Malformed markup is parsed leniently; a body that cannot be parsed at all
// yields no links.
func (e *GoqueryExtractor) Extract(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		hrefs = append(hrefs, href)
	})
	return hrefs
}
