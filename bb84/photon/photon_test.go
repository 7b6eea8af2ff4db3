package photon

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qnotes/bb84/bb84/bitmap"
)

func TestBasisString(t *testing.T) {
	assert.Equal(t, "Z", Rectilinear.String())
	assert.Equal(t, "X", Diagonal.String())
	assert.Equal(t, "Basis(7)", Basis(7).String())
}

func TestParseBases(t *testing.T) {
	d, err := ParseBases("X, Z, z x")
	require.NoError(t, err)
	assert.Equal(t, "1001", d.String())
	assert.Equal(t, "XZZX", FormatBases(d))
	assert.Equal(t, Diagonal, BasisAt(d, 0))
	assert.Equal(t, Rectilinear, BasisAt(d, 1))

	_, err = ParseBases("XY")
	assert.Error(t, err)
}

func TestMeasureMatchingBasis(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, b := range []Basis{Rectilinear, Diagonal} {
		for _, bit := range []bool{false, true} {
			for i := 0; i < 100; i++ {
				require.Equal(t, bit, Measure(bit, b, b, r), "basis %v, bit %v", b, bit)
			}
		}
	}
}

func TestMeasureMismatchedBasis(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	const n = 20000
	for _, bit := range []bool{false, true} {
		ones := 0
		for i := 0; i < n; i++ {
			if Measure(bit, Rectilinear, Diagonal, r) {
				ones++
			}
		}
		assert.InDelta(t, 0.5, float64(ones)/n, 0.02, "prepared bit %v", bit)
	}
}

func TestChannelOptsValidate(t *testing.T) {
	tcs := []struct {
		name string
		opts ChannelOpts
		eErr bool
	}{
		{"ideal", ChannelOpts{}, false},
		{"bounds", ChannelOpts{Noise: 1, Eavesdrop: 1}, false},
		{"negative noise", ChannelOpts{Noise: -0.01}, true},
		{"big eavesdrop", ChannelOpts{Eavesdrop: 1.01}, true},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			assert.Equal(t, tc.eErr, err != nil, "Validate() == %v", err)
		})
	}
	assert.True(t, ChannelOpts{}.IsIdeal())
	assert.False(t, ChannelOpts{Noise: 0.1}.IsIdeal())
}

func TestSimulatedChannelIdeal(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	sender, receiver := NewSimulatedChannel(ChannelOpts{}, 1, r)
	bits := bitmap.Random(r, 512)
	bases := bitmap.Random(r, 512)

	require.NoError(t, sender.Send(bits, bases))
	got, err := receiver.Receive(bases)
	require.NoError(t, err)
	assert.True(t, bitmap.Equal(bits, got), "same-basis measurement changed bits")
	assert.Zero(t, receiver.Intercepted())
}

func TestSimulatedChannelLengthMismatch(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	sender, receiver := NewSimulatedChannel(ChannelOpts{}, 1, r)

	assert.Error(t, sender.Send(bitmap.NewDense(nil, 3), bitmap.NewDense(nil, 4)))

	require.NoError(t, sender.Send(bitmap.NewDense(nil, 8), bitmap.NewDense(nil, 8)))
	_, err := receiver.Receive(bitmap.NewDense(nil, 7))
	assert.Error(t, err)
}

func TestSimulatedChannelNoise(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	sender, receiver := NewSimulatedChannel(ChannelOpts{Noise: 1}, 1, r)
	bits := bitmap.Random(r, 64)
	bases := bitmap.Random(r, 64)

	require.NoError(t, sender.Send(bits, bases))
	got, err := receiver.Receive(bases)
	require.NoError(t, err)
	assert.Equal(t, 64, bitmap.CountOnes(bitmap.XOr(bits, got)))
}

func TestSimulatedChannelInterceptResend(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	sender, receiver := NewSimulatedChannel(ChannelOpts{Eavesdrop: 1}, 1, r)
	const n = 40000
	bits := bitmap.Random(r, n)
	bases := bitmap.Random(r, n)

	require.NoError(t, sender.Send(bits, bases))
	got, err := receiver.Receive(bases)
	require.NoError(t, err)
	assert.Equal(t, n, receiver.Intercepted())

	// Bob measures in Alice's basis, so every error is Eve's doing.
	rate := float64(bitmap.CountOnes(bitmap.XOr(bits, got))) / n
	assert.InDelta(t, 0.25, rate, 0.02)
}
