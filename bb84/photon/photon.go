// Package photon models the quantum half of BB84: qubits encoded as polarized
// photons, prepared by a Sender and measured by a Receiver.
//
// No state vector is simulated. For the four BB84 preparations |0>, |1>, |+>
// and |->, measuring in the preparation basis returns the prepared bit, and
// measuring in the conjugate basis returns a fair coin flip. That closed form
// is exact for these states.
package photon

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/qnotes/bb84/bb84/bitmap"
)

// A Basis is the frame a qubit is encoded or measured in.
type Basis uint8

const (
	// Rectilinear is the computational (Z) basis, {|0>, |1>}. Stored as a 0
	// bit in basis bitmaps.
	Rectilinear Basis = iota
	// Diagonal is the Hadamard (X) basis, {|+>, |->}. Stored as a 1 bit.
	Diagonal
)

func (b Basis) String() string {
	switch b {
	case Rectilinear:
		return "Z"
	case Diagonal:
		return "X"
	}
	return fmt.Sprintf("Basis(%d)", uint8(b))
}

// BasisAt returns the i-th basis of a basis bitmap.
func BasisAt(bases bitmap.Dense, i int) Basis {
	if bases.Get(i) {
		return Diagonal
	}
	return Rectilinear
}

// ParseBases converts a string of 'Z's and 'X's into a basis bitmap. Spaces
// and commas are ignored.
func ParseBases(s string) (bitmap.Dense, error) {
	d := bitmap.Empty()
	for _, c := range s {
		switch c {
		case 'Z', 'z':
			d.AppendBit(false)
		case 'X', 'x':
			d.AppendBit(true)
		case ' ', ',':
			continue
		default:
			return bitmap.Empty(), fmt.Errorf("invalid basis string rep: %q", s)
		}
	}
	return d, nil
}

// FormatBases renders a basis bitmap as a string of 'Z's and 'X's.
func FormatBases(bases bitmap.Dense) string {
	var sb strings.Builder
	sb.Grow(bases.Size())
	for i := 0; i < bases.Size(); i++ {
		sb.WriteString(BasisAt(bases, i).String())
	}
	return sb.String()
}

// Measure returns the outcome of measuring, in basis meas, a qubit that
// encodes bit in basis prep. Mismatched bases draw an independent fair coin
// from r; the prepared bit plays no part in that outcome.
func Measure(bit bool, prep, meas Basis, r *rand.Rand) bool {
	if prep == meas {
		return bit
	}
	return r.Intn(2) == 1
}

// A Sender prepares qubits and puts them on the quantum channel.
type Sender interface {
	// Send encodes bits[i] in bases[i] for every i. bits and bases must have
	// the same length.
	Send(bits, bases bitmap.Dense) error
}

// A Receiver takes qubits off the quantum channel and measures them.
type Receiver interface {
	// Receive measures the next batch of qubits, the i-th in bases[i], and
	// returns the measured bits. bases must match the length of the batch
	// sent.
	Receive(bases bitmap.Dense) (bitmap.Dense, error)
}

// A Tap is implemented by Receivers that simulate an eavesdropper and can
// report how many qubits she measured.
type Tap interface {
	Intercepted() int
}
