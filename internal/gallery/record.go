package gallery

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// IndexKey is the KeyValueStore key holding the photo index.
const IndexKey = "photos"

// PhotoRecord is one captured photo.
type PhotoRecord struct {
	// FilePath is the FileStore identifier: a storage URI on native hosts,
	// a bare file name otherwise.
	FilePath string `json:"filePath"`
	// WebViewPath can be rendered directly by the UI.
	WebViewPath string `json:"webViewPath"`
	// InlineData is a data URI attached during hydration. Never persisted.
	InlineData string `json:"-"`
}

// BlobName returns the FileStore name of the record's blob: the last
// slash-delimited segment of FilePath.
func (p PhotoRecord) BlobName() string {
	return p.FilePath[strings.LastIndex(p.FilePath, "/")+1:]
}

// stripInline returns a copy of records with InlineData removed.
func stripInline(records []PhotoRecord) []PhotoRecord {
	out := make([]PhotoRecord, len(records))
	for i, r := range records {
		r.InlineData = ""
		out[i] = r
	}
	return out
}

// Namer hands out blob names of the form <epoch-millis>.jpeg.
type Namer struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewNamer returns a Namer reading the given clock. A nil clock uses time.Now.
func NewNamer(now func() time.Time) *Namer {
	if now == nil {
		now = time.Now
	}
	return &Namer{now: now}
}

// Next returns a fresh name. Names are strictly increasing within one
// Namer, so two captures in the same millisecond do not collide.
func (n *Namer) Next() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	ms := n.now().UnixMilli()
	if ms <= n.last {
		ms = n.last + 1
	}
	n.last = ms
	return strconv.FormatInt(ms, 10) + ".jpeg"
}

// Observe records an existing name so later names sort after it. Names
// not produced by a Namer are ignored.
func (n *Namer) Observe(name string) {
	ms, err := strconv.ParseInt(strings.TrimSuffix(name, ".jpeg"), 10, 64)
	if err != nil {
		return
	}
	n.mu.Lock()
	if ms > n.last {
		n.last = ms
	}
	n.mu.Unlock()
}
