// Package ids generates opaque identifiers for conversations and messages.
package ids

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator produces 8-4-4-4-12 hex identifiers. The zero value is ready to use.
type Generator struct {
	mu       sync.Mutex
	fallback *rand.Rand

	// random overrides the crypto source; tests use it to force the fallback.
	random func() (uuid.UUID, error)
}

// New never fails: if the crypto source errors, a seeded PRNG fills in.
func (g *Generator) New() string {
	src := uuid.NewRandom
	if g.random != nil {
		src = g.random
	}
	if id, err := src(); err == nil {
		return id.String()
	}
	return g.pseudo()
}

func (g *Generator) pseudo() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fallback == nil {
		seed := uint64(time.Now().UnixNano())
		g.fallback = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	hi, lo := g.fallback.Uint64(), g.fallback.Uint64()
	// version 4, RFC 4122 variant
	hi = hi&^(0xf<<12) | 0x4<<12
	lo = lo&^(0x3<<62) | 0x2<<62
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		hi>>32, (hi>>16)&0xffff, hi&0xffff, lo>>48, lo&0xffffffffffff)
}

var defaultGen Generator

// New returns an identifier from the package-level generator.
func New() string {
	return defaultGen.New()
}
