package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. User records are keyed by it so that items
// sort by creation time inside the users table.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
