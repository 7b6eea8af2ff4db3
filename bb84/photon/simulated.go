package photon

import (
	"fmt"
	"math/rand"

	"github.com/qnotes/bb84/bb84/bitmap"
)

// ChannelOpts describes the imperfections of a simulated quantum channel. The
// zero value is an ideal channel: no noise and no eavesdropper.
type ChannelOpts struct {
	// Noise is the probability that a received qubit's measured bit is
	// flipped after measurement, independent of basis.
	Noise float64

	// Eavesdrop is the probability that Eve intercepts a qubit in flight,
	// measures it in a uniformly random basis, and resends her outcome
	// encoded in that basis (intercept-resend).
	Eavesdrop float64
}

// Validate reports whether the probabilities in o are within [0, 1].
func (o ChannelOpts) Validate() error {
	if o.Noise < 0 || o.Noise > 1 {
		return fmt.Errorf("noise probability must be within [0, 1], got %v", o.Noise)
	}
	if o.Eavesdrop < 0 || o.Eavesdrop > 1 {
		return fmt.Errorf("eavesdrop probability must be within [0, 1], got %v", o.Eavesdrop)
	}
	return nil
}

// IsIdeal reports whether o describes a noiseless, untapped channel.
func (o ChannelOpts) IsIdeal() bool {
	return o.Noise == 0 && o.Eavesdrop == 0
}

// NewSimulatedChannel creates a pair of (Sender, Receiver) structs simulating a
// quantum channel. Each call to Send() must be mirrored by a call to Receive().
// Calls to Send() block once bufSize of them are pending, and Receive() blocks
// until a batch is available.
//
// r supplies every random draw the channel makes: mismatched-basis outcomes,
// Eve's choices, and noise. It must not be shared with a concurrently running
// goroutine.
func NewSimulatedChannel(opts ChannelOpts, bufSize int, r *rand.Rand) (*SimulatedSender, *SimulatedReceiver) {
	batches := make(chan batch, bufSize)
	ss := &SimulatedSender{batches: batches}
	sr := &SimulatedReceiver{
		opts:    opts,
		rand:    r,
		batches: batches,
	}
	return ss, sr
}

type batch struct {
	bits  bitmap.Dense
	bases bitmap.Dense
}

type SimulatedSender struct {
	batches chan<- batch
}

type SimulatedReceiver struct {
	opts        ChannelOpts
	rand        *rand.Rand
	batches     <-chan batch
	intercepted int
}

var _ Tap = (*SimulatedReceiver)(nil)

// Intercepted returns the number of qubits Eve has measured so far.
func (sr *SimulatedReceiver) Intercepted() int {
	return sr.intercepted
}

// Send implements the Sender interface.
func (ss *SimulatedSender) Send(bits, bases bitmap.Dense) error {
	if bits.Size() != bases.Size() {
		return fmt.Errorf("bit and basis length must agree: %d != %d", bits.Size(), bases.Size())
	}
	ss.batches <- batch{bits: bits, bases: bases}
	return nil
}

// Receive implements the Receiver interface.
func (sr *SimulatedReceiver) Receive(bases bitmap.Dense) (bitmap.Dense, error) {
	sent := <-sr.batches
	if bases.Size() != sent.bits.Size() {
		return bitmap.Empty(), fmt.Errorf(
			"send length must match receive basis length: %d != %d", sent.bits.Size(), bases.Size())
	}

	measured := bitmap.NewDense(nil, bases.Size())
	for i := 0; i < bases.Size(); i++ {
		bit, prep := sent.bits.Get(i), BasisAt(sent.bases, i)
		if sr.opts.Eavesdrop > 0 && sr.rand.Float64() < sr.opts.Eavesdrop {
			eveBasis := Basis(sr.rand.Intn(2))
			bit = Measure(bit, prep, eveBasis, sr.rand)
			prep = eveBasis
			sr.intercepted++
		}
		measured.Set(i, Measure(bit, prep, BasisAt(bases, i), sr.rand))
		if sr.opts.Noise > 0 && sr.rand.Float64() < sr.opts.Noise {
			measured.Flip(i)
		}
	}
	return measured, nil
}
