package bb84

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qnotes/bb84/bb84/bitmap"
)

func TestSummarize(t *testing.T) {
	results := []Result{
		{
			Outcome:    Secure,
			AliceKey:   bitmap.NewDense(nil, 4),
			Transcript: Transcript{Stats: Stats{Qubits: 10, Sifted: 5}},
		}, {
			Outcome:    Secure,
			AliceKey:   bitmap.NewDense(nil, 2),
			Transcript: Transcript{Stats: Stats{Qubits: 10, Sifted: 3}},
		}, {
			Outcome:    Compromised,
			Transcript: Transcript{Stats: Stats{Qubits: 10, Sifted: 4, ErrorRate: 0.5}},
		}, {
			Outcome:    Inconclusive,
			Transcript: Transcript{Stats: Stats{Qubits: 10}},
		},
	}

	s := Summarize(results)
	assert.Equal(t, 4, s.Runs)
	assert.Equal(t, 2, s.Secure)
	assert.Equal(t, 1, s.Compromised)
	assert.Equal(t, 1, s.Inconclusive)
	assert.InDelta(t, 0.3, s.MeanSiftedFraction, 1e-12)
	assert.Greater(t, s.StdSiftedFraction, 0.0)
	assert.InDelta(t, 3.0, s.MeanKeyBits, 1e-12)
	assert.InDelta(t, 0.125, s.MeanErrorRate, 1e-12)
}

func TestSummarizeDegenerate(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]Result{{
		Outcome:    Inconclusive,
		Transcript: Transcript{Stats: Stats{Qubits: 4}},
	}})
	assert.Equal(t, 1, s.Runs)
	assert.Zero(t, s.StdSiftedFraction)
	assert.Zero(t, s.MeanKeyBits)
}
