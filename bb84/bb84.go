// Package bb84 simulates the BB84 quantum key distribution protocol between two
// legitimate participants, Alice and Bob.
//
// A run prepares random bits in random bases, sends them over a simulated
// quantum channel, sifts out the rounds whose bases disagree, and publicly
// compares one sifted bit as an integrity check. That single-bit check stands
// in for estimating the quantum bit error rate over a sacrificed random
// sample; it is illustrative only and must not be relied on for real key
// agreement.
package bb84

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/qnotes/bb84/bb84/bitmap"
	"github.com/qnotes/bb84/bb84/photon"
)

// ErrInvalidArgument is returned, wrapped, when a session is configured with
// nonsensical options. No work is done before it is returned.
var ErrInvalidArgument = errors.New("invalid argument")

// An Outcome classifies how a run ended. Every Outcome is an ordinary result,
// not an error.
type Outcome int

const (
	// outcomeUnset is the zero value, carried by the Result returned next to
	// an error.
	outcomeUnset Outcome = iota
	// Inconclusive means no basis ever matched, so there was nothing to check.
	Inconclusive
	// Secure means the sampled bit agreed and a key was produced.
	Secure
	// Compromised means the sampled bit disagreed; eavesdropping is suspected
	// and no key is returned.
	Compromised
)

func (o Outcome) String() string {
	switch o {
	case Inconclusive:
		return "inconclusive"
	case Secure:
		return "secure"
	case Compromised:
		return "compromised"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Stats packages together metrics describing a single run.
type Stats struct {
	Qubits int
	Sifted int

	// ErrorRate is the fraction of sifted positions where Alice's and Bob's
	// bits differ. Only a simulation can observe it; the protocol itself
	// never does.
	ErrorRate float64

	// Intercepted counts the qubits the eavesdropper measured.
	Intercepted int
}

// A Transcript records every sequence produced during a run, indexed by
// qubit. Bases use 0 for rectilinear (Z) and 1 for diagonal (X).
type Transcript struct {
	AliceBits  bitmap.Dense
	AliceBases bitmap.Dense
	BobBases   bitmap.Dense
	BobBits    bitmap.Dense

	SiftedAlice bitmap.Dense
	SiftedBob   bitmap.Dense

	Stats Stats
}

// A Result is the outcome of one run. AliceKey and BobKey are only populated
// when Outcome is Secure; they may be empty if only one basis matched.
type Result struct {
	Outcome    Outcome
	AliceKey   bitmap.Dense
	BobKey     bitmap.Dense
	Transcript Transcript
}

// SessionOpts packages together the arguments necessary to construct a new
// Session.
type SessionOpts struct {
	// Qubits is the number of qubits exchanged per run. Must be positive.
	Qubits int

	// Rand provides every random draw of the run: bits, bases and
	// measurement outcomes. Seed it for reproducible runs. If nil, a
	// time-seeded source is used.
	Rand *rand.Rand

	// Channel describes the simulated quantum channel. The zero value is
	// noiseless with no eavesdropper.
	Channel photon.ChannelOpts

	// Sender/Receiver replace the simulated quantum channel. Either both or
	// neither must be set, and Channel must then be left zero. A Receiver
	// that implements photon.Tap reports intercepted qubits in Stats.
	Sender   photon.Sender
	Receiver photon.Receiver
}

// NewSession returns a new Session, configured in accordance with opts, or an
// error wrapping ErrInvalidArgument if the options are nonsensical.
func NewSession(opts SessionOpts) (*Session, error) {
	if opts.Qubits <= 0 {
		return nil, fmt.Errorf("%w: qubit count must be positive, got %d", ErrInvalidArgument, opts.Qubits)
	}
	if err := opts.Channel.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if (opts.Sender == nil) != (opts.Receiver == nil) {
		return nil, fmt.Errorf("%w: Sender and Receiver must be provided together", ErrInvalidArgument)
	}
	if opts.Sender != nil && !opts.Channel.IsIdeal() {
		return nil, fmt.Errorf("%w: Channel options only apply to the simulated channel", ErrInvalidArgument)
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var (
		sender   photon.Sender   = opts.Sender
		receiver photon.Receiver = opts.Receiver
	)
	if sender == nil {
		sender, receiver = photon.NewSimulatedChannel(opts.Channel, 1, r)
	}
	return &Session{
		alice:  &alice{sender: sender, rand: r},
		bob:    &bob{receiver: receiver, rand: r},
		qubits: opts.Qubits,
	}, nil
}

// Run simulates one BB84 exchange of numQubits qubits over an ideal channel.
// If seed is non-nil the run is reproducible; otherwise it draws from a
// time-seeded source.
func Run(numQubits int, seed *int64) (Result, error) {
	opts := SessionOpts{Qubits: numQubits}
	if seed != nil {
		opts.Rand = rand.New(rand.NewSource(*seed))
	}
	s, err := NewSession(opts)
	if err != nil {
		return Result{}, err
	}
	return s.Run()
}
