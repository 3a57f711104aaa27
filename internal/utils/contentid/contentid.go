package contentid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lowercase ULID string used as a content record id. Safe for
// concurrent use; the monotonic entropy source is lock-guarded.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return strings.ToLower(id.String())
}

// IsValid reports whether the string is a well-formed record id.
func IsValid(value string) bool {
	_, err := ulid.Parse(strings.TrimSpace(value))
	return err == nil
}
