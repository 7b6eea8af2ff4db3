package bb84

import (
	"fmt"
	"math/rand"

	"github.com/qnotes/bb84/bb84/bitmap"
	"github.com/qnotes/bb84/bb84/photon"
)

// A Session runs BB84 exchanges between a simulated Alice and Bob. A Session is
// not safe for concurrent use; independent Sessions are.
type Session struct {
	alice  *alice
	bob    *bob
	qubits int
}

// An alice represents the sending BB84 participant.
type alice struct {
	sender    photon.Sender
	rand      *rand.Rand
	bitsFunc  func() bitmap.Dense
	basisFunc func() bitmap.Dense
}

// A bob represents the receiving BB84 participant.
type bob struct {
	receiver  photon.Receiver
	rand      *rand.Rand
	basisFunc func() bitmap.Dense
}

// Run performs one exchange: preparation, transmission and measurement,
// sifting, and the single-bit integrity check.
func (s *Session) Run() (Result, error) {
	var t Transcript
	// Draw order is Alice's bits, Alice's bases, Bob's bases, then the channel.
	bits, aBases := s.alice.prepare(s.qubits)
	bBases := s.bob.chooseBases(s.qubits)

	before := intercepted(s.bob.receiver)
	if err := s.alice.sender.Send(bits, aBases); err != nil {
		return Result{}, fmt.Errorf("sending qubits: %w", err)
	}
	measured, err := s.bob.receiver.Receive(bBases)
	if err != nil {
		return Result{}, fmt.Errorf("receiving qubits: %w", err)
	}

	t.AliceBits, t.AliceBases = bits, aBases
	t.BobBases, t.BobBits = bBases, measured
	t.SiftedAlice = sift(bits, aBases, bBases)
	t.SiftedBob = sift(measured, bBases, aBases)
	t.Stats = Stats{
		Qubits:      s.qubits,
		Sifted:      t.SiftedAlice.Size(),
		ErrorRate:   errorRate(t.SiftedAlice, t.SiftedBob),
		Intercepted: intercepted(s.bob.receiver) - before,
	}

	res, err := checkIntegrity(t.SiftedAlice, t.SiftedBob)
	if err != nil {
		return Result{}, err
	}
	res.Transcript = t
	return res, nil
}

func (a *alice) prepare(n int) (bits, bases bitmap.Dense) {
	if a.bitsFunc != nil {
		bits = a.bitsFunc()
	} else {
		bits = bitmap.Random(a.rand, n)
	}
	if a.basisFunc != nil {
		bases = a.basisFunc()
	} else {
		bases = bitmap.Random(a.rand, n)
	}
	return bits, bases
}

func (b *bob) chooseBases(n int) bitmap.Dense {
	if b.basisFunc != nil {
		return b.basisFunc()
	}
	return bitmap.Random(b.rand, n)
}

// sift keeps the bits whose positions were prepared and measured in the same
// basis, in their original order.
func sift(bits, ownBases, otherBases bitmap.Dense) bitmap.Dense {
	return bitmap.Select(bits, bitmap.XNor(ownBases, otherBases))
}

// checkIntegrity publicly compares the first sifted bit of each party and, if
// it agrees, discards it from both keys.
//
// A real deployment would sacrifice a random subset of the sifted key,
// estimate an error rate from it, and compare that against a threshold. One
// bit only demonstrates the idea.
func checkIntegrity(siftedAlice, siftedBob bitmap.Dense) (Result, error) {
	if siftedAlice.Size() != siftedBob.Size() {
		return Result{}, fmt.Errorf("sifted keys differ in length: %d != %d", siftedAlice.Size(), siftedBob.Size())
	}
	n := siftedAlice.Size()
	if n == 0 {
		return Result{Outcome: Inconclusive}, nil
	}
	if siftedAlice.Get(0) != siftedBob.Get(0) {
		return Result{Outcome: Compromised}, nil
	}
	aKey, err := siftedAlice.Slice(1, n)
	if err != nil {
		return Result{}, err
	}
	bKey, err := siftedBob.Slice(1, n)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: Secure, AliceKey: aKey, BobKey: bKey}, nil
}

func intercepted(r photon.Receiver) int {
	if t, ok := r.(photon.Tap); ok {
		return t.Intercepted()
	}
	return 0
}

func errorRate(a, b bitmap.Dense) float64 {
	if a.Size() == 0 {
		return 0
	}
	return float64(bitmap.CountOnes(bitmap.XOr(a, b))) / float64(a.Size())
}
