package core

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// NewSource returns a random generator for exclusive use by one worker.
//
// Seeds come from the host entropy pool. If that is unavailable the wall clock
// is used instead; sampling never fails.
func NewSource() *rand.Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		now := uint64(time.Now().UnixNano())
		binary.LittleEndian.PutUint64(seed[:8], now)
		binary.LittleEndian.PutUint64(seed[8:], now^0x9e3779b97f4a7c15)
	}
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	))
}

// SamplePoint draws one point uniformly from [0,1]x[0,1].
//
// rand.Float64 yields [0,1); the excluded edge has measure zero.
func SamplePoint(rng *rand.Rand) Point {
	return Point{X: rng.Float64(), Y: rng.Float64()}
}

// Sample draws one point and returns its distance from the origin.
func Sample(rng *rand.Rand) Distance {
	return SamplePoint(rng).Distance()
}

// Draw runs Sample n times and returns the distances in draw order.
func Draw(rng *rand.Rand, n int) DistanceBatch {
	if n <= 0 {
		return nil
	}
	out := make(DistanceBatch, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Sample(rng))
	}
	return out
}
