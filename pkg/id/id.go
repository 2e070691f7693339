// Package id generates the durable identifiers used across the bot:
// ULIDs for ledger event and trade rows, and prefixed client order IDs
// for exchange submissions.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// orderPrefix marks bot-originated client order IDs in exchange logs.
const orderPrefix = "dgb-"

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// lexicographically increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string (time-sortable identifier).
//
// Ledger event rows and order client IDs use ULIDs so the SQLite mirror
// sorts by insertion time on the primary key alone.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Only possible if time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}

// NewOrderID returns a client order ID for exchange submissions.
func NewOrderID() string {
	return orderPrefix + New()
}

// Time recovers the generation time embedded in an identifier produced
// by New or NewOrderID.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(strings.TrimPrefix(s, orderPrefix))
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}
