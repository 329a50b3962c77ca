// Package bitset implements the fixed-length bit vectors used as graph
// feature vectors.
package bitset

import (
	"errors"
	"math/bits"
)

// ErrInvalidCell is returned by FromBytes for a cell that is neither 0 nor 1.
var ErrInvalidCell = errors.New("cell value is not 0 or 1")

// BitSet is a fixed-length sequence of bits packed into 64-bit buckets.
type BitSet struct {
	n       int
	buckets []uint64
}

// New returns a zeroed bit set of length n.
func New(n int) *BitSet {
	return &BitSet{
		n:       n,
		buckets: make([]uint64, (n+63)>>6), // >> 6 == / 64
	}
}

// Len returns the number of bits.
func (bs *BitSet) Len() int { return bs.n }

// Set turns bit i on. Out-of-range positions are ignored.
func (bs *BitSet) Set(i int) {
	if i < 0 || i >= bs.n {
		return
	}
	// i & 63 == i % 64
	bs.buckets[i>>6] |= 1 << (uint(i) & 63)
}

// Has reports whether bit i is on. Out-of-range positions read as off.
func (bs *BitSet) Has(i int) bool {
	if i < 0 || i >= bs.n {
		return false
	}
	return bs.buckets[i>>6]&(1<<(uint(i)&63)) != 0
}

// Count returns the number of bits set.
func (bs *BitSet) Count() int {
	c := 0
	for _, b := range bs.buckets {
		c += bits.OnesCount64(b)
	}
	return c
}

// Dominates reports whether every bit set in q is also set in bs. Vectors of
// different lengths are compared as if the shorter one were padded with
// zeros, so a mismatched pair never panics.
func (bs *BitSet) Dominates(q *BitSet) bool {
	for i, w := range q.buckets {
		var d uint64
		if i < len(bs.buckets) {
			d = bs.buckets[i]
		}
		if w&^d != 0 {
			return false
		}
	}
	return true
}

// Bytes expands the set into one byte per bit, each 0 or 1.
func (bs *BitSet) Bytes() []byte {
	out := make([]byte, bs.n)
	for i := range out {
		if bs.Has(i) {
			out[i] = 1
		}
	}
	return out
}

// FromBytes packs a one-byte-per-bit row back into a BitSet.
func FromBytes(cells []byte) (*BitSet, error) {
	bs := New(len(cells))
	for i, c := range cells {
		switch c {
		case 0:
		case 1:
			bs.Set(i)
		default:
			return nil, ErrInvalidCell
		}
	}
	return bs, nil
}
