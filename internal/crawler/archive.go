package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const upperhex = "0123456789ABCDEF"

// EncodeFilename derives the archive filename for a URL: the scheme prefix is
// stripped and every remaining byte outside [A-Za-z0-9_.~-] is percent-encoded.
// The encoding is reversible, so distinct URLs never collide.
func EncodeFilename(rawURL string) string {
	trimmed := rawURL
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+len("://"):]
	}
	var b strings.Builder
	b.Grow(len(trimmed))
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if isFilenameSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}
	return b.String()
}

func isFilenameSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-' || c == '~':
		return true
	}
	return false
}

// FileArchive writes fetched pages as flat files in a single directory.
type FileArchive struct {
	dir    string
	logger *zap.Logger
}

// NewFileArchive returns an archive rooted at dir, creating it if needed.
func NewFileArchive(dir string, logger *zap.Logger) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileArchive{dir: dir, logger: logger}, nil
}

// Dir returns the archive directory.
func (a *FileArchive) Dir() string {
	return a.dir
}

// ListExisting snapshots the filenames currently present in the archive
// directory. It is called once at startup so URLs saved by a prior run are
// skipped.
func (a *FileArchive) ListExisting() (map[string]struct{}, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return make(map[string]struct{}), fmt.Errorf("list output dir %s: %w", a.dir, err)
	}
	existing := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		existing[entry.Name()] = struct{}{}
	}
	return existing, nil
}

// Save writes the page body under the URL's encoded filename. Failures are
// reported to the caller but are never retried; a failed write must not stop
// the crawl.
func (a *FileArchive) Save(rawURL string, body []byte) error {
	name := EncodeFilename(rawURL)
	target := filepath.Join(a.dir, name)
	if err := os.WriteFile(target, body, 0o600); err != nil {
		return fmt.Errorf("write page %s: %w", name, err)
	}
	a.logger.Debug("saved page",
		zap.String("file", name),
		zap.Int("bytes", len(body)),
	)
	return nil
}
