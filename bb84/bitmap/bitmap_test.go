package bitmap

import (
	"bytes"
	"testing"
)

func mustDense(t *testing.T, s string) Dense {
	d, err := FromString(s)
	if err != nil {
		t.Fatalf("bugged test setup: %v", err)
	}
	return d
}

func TestFromStringInvalid(t *testing.T) {
	if _, err := FromString("01x1"); err == nil {
		t.Errorf("FromString(%q) did not fail", "01x1")
	}
}

func TestSelect(t *testing.T) {
	tcs := []struct {
		name string
		data Dense
		mask Dense
		eout Dense
	}{
		{
			name: "all",
			data: mustDense(t, "101"),
			mask: mustDense(t, "111"),
			eout: mustDense(t, "101"),
		}, {
			name: "some",
			data: mustDense(t, "10100011"),
			mask: mustDense(t, "11111100"),
			eout: mustDense(t, "101000"),
		}, {
			name: "none",
			data: mustDense(t, "10100011 111"),
			mask: mustDense(t, "00000000 000"),
			eout: mustDense(t, ""),
		}, {
			name: "short mask",
			data: mustDense(t, "1111"),
			mask: mustDense(t, "01"),
			eout: mustDense(t, "1"),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			out := Select(tc.data, tc.mask)
			if out.len != tc.eout.len {
				t.Errorf("got bitmap of len %d, want %d", out.len, tc.eout.len)
			}
			if !bytes.Equal(out.bits, tc.eout.bits) {
				t.Errorf("Select(%v, %v) == %v, want %v", tc.data, tc.mask, out, tc.eout)
			}
		})
	}
}

func TestBinaryOps(t *testing.T) {
	tcs := []struct {
		name string
		a, b Dense
		eout Dense
		op   func(a, b Dense) Dense
	}{
		{
			name: "XOR aligned",
			a:    mustDense(t, "10100000"),
			b:    mustDense(t, "01100000"),
			eout: mustDense(t, "11000000"),
			op:   XOr,
		}, {
			name: "XOR short a",
			a:    mustDense(t, "101"),
			b:    mustDense(t, "01111000"),
			eout: mustDense(t, "11011000"),
			op:   XOr,
		}, {
			name: "XOR multibyte",
			a:    mustDense(t, "1010 1010 1100 0110"),
			b:    mustDense(t, "0111 1000 1011 1011"),
			eout: mustDense(t, "1101 0010 0111 1101"),
			op:   XOr,
		}, {
			name: "XNOR aligned",
			a:    mustDense(t, "10100000"),
			b:    mustDense(t, "01100000"),
			eout: mustDense(t, "00111111"),
			op:   XNor,
		}, {
			name: "XNOR short a",
			a:    mustDense(t, "101"),
			b:    mustDense(t, "01111000"),
			eout: mustDense(t, "00100111"),
			op:   XNor,
		}, {
			name: "XNOR unaligned",
			a:    mustDense(t, "1010 1010 11"),
			b:    mustDense(t, "1010 1010 10"),
			eout: mustDense(t, "1111 1111 10"),
			op:   XNor,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.op(tc.a, tc.b)
			if out.Size() != tc.eout.Size() {
				t.Fatalf("got bitmap of len %d, want %d", out.Size(), tc.eout.Size())
			}
			if !bytes.Equal(out.bits, tc.eout.bits) {
				t.Errorf("got %v, want %v", out, tc.eout)
			}
		})
	}
}

func TestCountOnes(t *testing.T) {
	tcs := []struct {
		name string
		data Dense
		eout int
	}{
		{"short", mustDense(t, "101"), 2},
		{"empty", mustDense(t, ""), 0},
		{"multibyte one", mustDense(t, "1111 1111 11"), 10},
		{"multibyte two", mustDense(t, "1011 1011 10"), 7},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			out := CountOnes(tc.data)
			if out != tc.eout {
				t.Errorf("CountOnes(%v) == %v, want %v", tc.data, out, tc.eout)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tcs := []struct {
		name string
		a, b Dense
		eout bool
	}{
		{"empty", mustDense(t, ""), Empty(), true},
		{"same", mustDense(t, "0110 1"), mustDense(t, "0110 1"), true},
		{"differ", mustDense(t, "0110 1"), mustDense(t, "0110 0"), false},
		{"trailing zero", mustDense(t, "011"), mustDense(t, "0110"), false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.eout {
				t.Errorf("Equal(%v, %v) == %v, want %v", tc.a, tc.b, got, tc.eout)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "0", "1", "0001011101", "1111111100000000"} {
		if got := mustDense(t, s).String(); got != s {
			t.Errorf("FromString(%q).String() == %q", s, got)
		}
	}
}
