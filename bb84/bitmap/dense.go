package bitmap

import (
	"fmt"
	"math/rand"
)

// A Dense is a bitmap where every bit is explicitly represented. Bits are
// packed little-endian within each byte: bit i lives in byte i/8 at position
// i%8.
type Dense struct {
	bits []byte
	len  int
}

// NewDense returns a new dense bitmap whose contents are a copy of data, and
// whose length is bitLen. If bitLen is longer than data, then trailing zeros
// are added. If bitLen is negative, then it is inferred from data.
func NewDense(data []byte, bitLen int) Dense {
	if bitLen < 0 {
		bitLen = len(data) * byteSize
	}
	r := Dense{
		bits: make([]byte, BytesFor(bitLen)),
		len:  bitLen,
	}
	copy(r.bits, data)
	r.clearTail()
	return r
}

// Random returns a bitmap of n bits, each drawn uniformly from r.
func Random(r *rand.Rand, n int) Dense {
	d := NewDense(nil, n)
	for i := 0; i < n; i++ {
		if r.Intn(2) == 1 {
			d.Set(i, true)
		}
	}
	return d
}

// Get returns the i-th bit in this bitmap. Bits past the end read as zero.
func (d Dense) Get(i int) bool {
	if i < 0 || i >= d.len {
		return false
	}
	return 0 < d.bits[i/byteSize]&(1<<(i%byteSize))
}

// Size returns the number of bits in this bitmap, excluding implicit trailing
// zeros.
func (d Dense) Size() int {
	return d.len
}

// Slice returns a copy of bits [start, end).
func (d Dense) Slice(start, end int) (Dense, error) {
	if start < 0 || end < start || end > d.len {
		return Dense{}, fmt.Errorf("slicing bitmap of len %d to [%d, %d)", d.len, start, end)
	}
	r := NewDense(nil, 0)
	for i := start; i < end; i++ {
		r.AppendBit(d.Get(i))
	}
	return r, nil
}

// Set assigns the i-th bit. It panics if i is out of range.
func (d *Dense) Set(i int, bit bool) {
	if i < 0 || i >= d.len {
		panic(fmt.Sprintf("bitmap: index %d out of range [0, %d)", i, d.len))
	}
	j, pos := i/byteSize, i%byteSize
	if bit {
		d.bits[j] |= 1 << pos
	} else {
		d.bits[j] &^= 1 << pos
	}
}

// Flip inverts the i-th bit. It panics if i is out of range.
func (d *Dense) Flip(i int) {
	d.Set(i, !d.Get(i))
}

// AppendBit adds a single bit to the end of d.
func (d *Dense) AppendBit(bit bool) {
	i, pos := d.len/byteSize, d.len%byteSize
	d.len++
	if pos == 0 {
		d.bits = append(d.bits, 0)
	}
	if bit {
		d.bits[i] |= 1 << pos
	}
}

func (d Dense) byteAt(i int) byte {
	if i >= len(d.bits) {
		return 0
	}
	return d.bits[i]
}

// clearTail zeroes the unused high bits of the final byte, so that byte-wise
// operations such as CountOnes never observe garbage past len.
func (d *Dense) clearTail() {
	off := d.len % byteSize
	if off == 0 || len(d.bits) == 0 {
		return
	}
	d.bits[len(d.bits)-1] &= 0xFF >> (byteSize - off)
}
