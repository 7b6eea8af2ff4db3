package bb84

import (
	"github.com/qnotes/bb84/bb84/photon"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToProto converts r into an equivalent protobuf Struct, suitable for
// rendering with protojson. Bits are encoded as strings of '0' and '1', bases
// as strings of 'Z' and 'X'.
func (r Result) ToProto() (*structpb.Struct, error) {
	t := r.Transcript
	m := map[string]interface{}{
		"outcome": r.Outcome.String(),
		"transcript": map[string]interface{}{
			"alice_bits":   t.AliceBits.String(),
			"alice_bases":  photon.FormatBases(t.AliceBases),
			"bob_bases":    photon.FormatBases(t.BobBases),
			"bob_bits":     t.BobBits.String(),
			"sifted_alice": t.SiftedAlice.String(),
			"sifted_bob":   t.SiftedBob.String(),
		},
		"stats": map[string]interface{}{
			"qubits":      t.Stats.Qubits,
			"sifted":      t.Stats.Sifted,
			"error_rate":  t.Stats.ErrorRate,
			"intercepted": t.Stats.Intercepted,
		},
	}
	if r.Outcome == Secure {
		m["alice_key"] = r.AliceKey.String()
		m["bob_key"] = r.BobKey.String()
	}
	return structpb.NewStruct(m)
}
