// Package idgen implements a collision-resistant id generator with
// per-goroutine generator state seeded once, so Generate never needs to
// take a shared lock.
package idgen

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator produces collision-resistant ids without per-call
// synchronization, by drawing from a pool of independently-seeded random
// sources instead of one shared one.
type Generator struct {
	pool sync.Pool
}

// New builds a Generator. Each pooled source is seeded once, independently,
// from a cryptographically random seed via uuid.NewRandom on first use.
func New() *Generator {
	return &Generator{
		pool: sync.Pool{
			New: func() interface{} {
				seed, err := uuid.NewRandom()
				if err != nil {
					// crypto/rand is exhausted or unavailable; fall back to
					// a time-derived seed rather than fail id generation.
					return rand.New(rand.NewSource(time.Now().UnixNano()))
				}
				var s int64
				for _, b := range seed {
					s = s<<8 | int64(b)
				}
				return rand.New(rand.NewSource(s))
			},
		},
	}
}

// Generate returns a new v4 UUID string, using a pooled per-goroutine
// source rather than contending on a single global one.
func (g *Generator) Generate() string {
	r := g.pool.Get().(*rand.Rand)
	defer g.pool.Put(r)

	var b [16]byte
	_, _ = r.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant

	id, err := uuid.FromBytes(b[:])
	if err != nil {
		// Unreachable: FromBytes only fails on a wrong-length slice.
		return uuid.New().String()
	}
	return id.String()
}
