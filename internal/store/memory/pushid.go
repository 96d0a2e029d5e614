package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// pushAlphabet is ordered by ASCII value so that generated keys sort
// lexicographically in generation order.
const pushAlphabet = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// pushIDGenerator produces 20-character child keys: 8 characters encode
// the millisecond timestamp, 12 carry randomness. Keys minted within the
// same millisecond reuse the previous random suffix incremented by one,
// which keeps ordering strict under bursts.
type pushIDGenerator struct {
	mu       sync.Mutex
	now      func() time.Time
	lastMs   int64
	lastRand [12]int
}

func newPushIDGenerator(now func() time.Time) *pushIDGenerator {
	return &pushIDGenerator{now: now}
}

func (g *pushIDGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()

	var id [20]byte
	ts := ms
	for i := 7; i >= 0; i-- {
		id[i] = pushAlphabet[ts%64]
		ts /= 64
	}

	if ms == g.lastMs {
		// Same millisecond: bump the previous suffix.
		for i := 11; i >= 0; i-- {
			g.lastRand[i]++
			if g.lastRand[i] < 64 {
				break
			}
			g.lastRand[i] = 0
		}
	} else {
		g.lastMs = ms
		entropy := uuid.New()
		for i := 0; i < 12; i++ {
			g.lastRand[i] = int(entropy[i]) % 64
		}
	}

	for i := 0; i < 12; i++ {
		id[8+i] = pushAlphabet[g.lastRand[i]]
	}

	return string(id[:])
}
