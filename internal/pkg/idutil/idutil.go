// Package idutil generates the time-sortable ULID identifiers used for
// documents and search query logs. ULIDs sort lexicographically by
// creation time, which keeps primary key indexes append-friendly.
package idutil

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu sync.Mutex
	// Monotonic entropy keeps IDs generated within the same millisecond
	// ordered. The reader is not concurrency-safe, hence the mutex.
	entropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new 26-character ULID string.
func NewID() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
