package bb84

import (
	"gonum.org/v1/gonum/stat"
)

// A Summary aggregates the results of many runs.
type Summary struct {
	Runs         int
	Secure       int
	Compromised  int
	Inconclusive int

	MeanSiftedFraction float64
	StdSiftedFraction  float64
	MeanKeyBits        float64
	MeanErrorRate      float64
}

// Summarize computes a Summary over results. Key length only counts Secure
// runs; standard deviations need at least two runs and are zero otherwise.
func Summarize(results []Result) Summary {
	s := Summary{Runs: len(results)}
	if len(results) == 0 {
		return s
	}
	var fractions, errRates, keyBits []float64
	for _, r := range results {
		switch r.Outcome {
		case Secure:
			s.Secure++
			keyBits = append(keyBits, float64(r.AliceKey.Size()))
		case Compromised:
			s.Compromised++
		case Inconclusive:
			s.Inconclusive++
		}
		st := r.Transcript.Stats
		if st.Qubits > 0 {
			fractions = append(fractions, float64(st.Sifted)/float64(st.Qubits))
		}
		errRates = append(errRates, st.ErrorRate)
	}
	if len(fractions) > 1 {
		s.MeanSiftedFraction, s.StdSiftedFraction = stat.MeanStdDev(fractions, nil)
	} else if len(fractions) == 1 {
		s.MeanSiftedFraction = fractions[0]
	}
	if len(keyBits) > 0 {
		s.MeanKeyBits = stat.Mean(keyBits, nil)
	}
	s.MeanErrorRate = stat.Mean(errRates, nil)
	return s
}
