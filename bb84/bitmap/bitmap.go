// Package bitmap provides utilities for operating on densely-packed arrays of
// booleans, e.g. the bits, bases and keys exchanged during BB84.
package bitmap

import (
	"fmt"
	"math/bits"
	"strings"
)

const byteSize = 8

// Empty returns an empty, dense bitmap.
func Empty() Dense {
	return Dense{}
}

// FromString converts a string of '1's and '0's to a Dense. Spaces are
// ignored, so "0101 1100" is a valid 8-bit representation.
func FromString(s string) (Dense, error) {
	d := Dense{}
	for _, c := range s {
		switch c {
		case '1':
			d.AppendBit(true)
		case '0':
			d.AppendBit(false)
		case ' ':
			continue
		default:
			return Dense{}, fmt.Errorf("invalid bitmap string rep: %q", s)
		}
	}
	return d, nil
}

// Select selects a subset of bits from data, according to which bits are set in
// mask. Bit order is preserved.
func Select(data, mask Dense) Dense {
	var d Dense
	for i := 0; i < data.Size(); i++ {
		if !mask.Get(i) {
			continue
		}
		d.AppendBit(data.Get(i))
	}
	return d
}

// XOr returns the bitwise XOR of a and b. The shorter of the two is padded with
// implicit trailing zeros.
func XOr(a, b Dense) Dense {
	return zip(a, b, func(x, y byte) byte { return x ^ y })
}

// XNor returns the bitwise equality of a and b. The shorter of the two is
// padded with implicit trailing zeros.
func XNor(a, b Dense) Dense {
	return zip(a, b, func(x, y byte) byte { return ^(x ^ y) })
}

func zip(a, b Dense, op func(x, y byte) byte) Dense {
	n := a.len
	if b.len > n {
		n = b.len
	}
	r := Dense{
		bits: make([]byte, BytesFor(n)),
		len:  n,
	}
	for i := range r.bits {
		r.bits[i] = op(a.byteAt(i), b.byteAt(i))
	}
	r.clearTail()
	return r
}

// CountOnes returns the total number of bits set in d.
func CountOnes(d Dense) int {
	var sum int
	for _, b := range d.bits {
		sum += bits.OnesCount8(b)
	}
	return sum
}

// Equal returns true iff a and b have the same length and contain the same
// bits.
func Equal(a, b Dense) bool {
	return a.len == b.len && CountOnes(XOr(a, b)) == 0
}

// String renders d as a run of '0' and '1' characters, lowest index first.
func (d Dense) String() string {
	var sb strings.Builder
	sb.Grow(d.len)
	for i := 0; i < d.len; i++ {
		if d.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// BytesFor returns the number of bytes necessary to hold the provided number of
// bits.
func BytesFor(bits int) int {
	return (bits + byteSize - 1) / byteSize
}
