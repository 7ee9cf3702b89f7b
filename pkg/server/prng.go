package server

import "github.com/markadiusz/robots-go/pkg/protocol"

// lcg is a Park-Miller minimal standard generator: the minstd_rand family
// specified by the wire protocol's PRNG contract. The standard library's
// math/rand intentionally does not implement this exact multiplicative
// congruential generator, and the protocol's scenario tests require
// byte-for-byte reproducible sequences given a seed, so this is
// hand-rolled rather than borrowed from an unrelated generator family.
type lcg struct {
	state uint64
}

const (
	lcgModulus    = 2147483647 // 2^31 - 1
	lcgMultiplier = 48271
)

// newLCG seeds the generator. A seed of 0 maps to state 1, matching the
// minstd_rand family's convention that the generator never gets stuck at
// the fixed point of a purely multiplicative recurrence.
func newLCG(seed uint32) *lcg {
	state := uint64(seed) % lcgModulus
	if state == 0 {
		state = 1
	}
	return &lcg{state: state}
}

// next returns the next value in [1, lcgModulus).
func (g *lcg) next() uint32 {
	g.state = (g.state * lcgMultiplier) % lcgModulus
	return uint32(g.state)
}

// generatePosition draws two values from g and reduces them modulo the
// board dimensions, matching the reference generate_position contract.
func generatePosition(g *lcg, sizeX, sizeY uint16) protocol.Position {
	x := g.next() % uint32(sizeX)
	y := g.next() % uint32(sizeY)
	return protocol.Position{X: uint16(x), Y: uint16(y)}
}
