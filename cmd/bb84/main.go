// bb84 runs a single simulated BB84 exchange and walks through every step of
// it: Alice's bits and bases, Bob's bases and measurements, the sifted keys,
// the integrity check, and the final keys.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	flag "github.com/spf13/pflag"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/qnotes/bb84/bb84"
	"github.com/qnotes/bb84/bb84/photon"
	"github.com/qnotes/bb84/internal/logging"
)

var validate = validator.New()

type config struct {
	Qubits    int     `validate:"min=1"`
	Noise     float64 `validate:"min=0,max=1"`
	Eavesdrop float64 `validate:"min=0,max=1"`
	Format    string  `validate:"oneof=text json"`
	LogLevel  string  `validate:"omitempty,oneof=debug info warn error"`
	Pretty    bool

	// Seed is only honored when Seeded is set.
	Seed   int64
	Seeded bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "bb84: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("bb84", flag.ContinueOnError)
	fs.IntVar(&cfg.Qubits, "qubits", 10, "The number of qubits Alice sends.")
	fs.Int64Var(&cfg.Seed, "seed", 0, "Seed for every random draw. Omit for a non-deterministic run.")
	fs.Float64Var(&cfg.Noise, "noise", 0, "Probability that the channel flips a measured bit.")
	fs.Float64Var(&cfg.Eavesdrop, "eavesdrop", 0, "Probability that Eve intercepts and resends a qubit.")
	fs.StringVar(&cfg.Format, "format", "text", "Output format: text or json.")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Human-readable log output.")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	cfg.Seeded = fs.Changed("seed")
	if err := validate.Struct(cfg); err != nil {
		return config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.Pretty, Out: stderr})
	if err != nil {
		return err
	}

	opts := bb84.SessionOpts{
		Qubits:  cfg.Qubits,
		Channel: photon.ChannelOpts{Noise: cfg.Noise, Eavesdrop: cfg.Eavesdrop},
	}
	if cfg.Seeded {
		opts.Rand = rand.New(rand.NewSource(cfg.Seed))
	}
	s, err := bb84.NewSession(opts)
	if err != nil {
		return err
	}
	log.Debug().
		Int("qubits", cfg.Qubits).
		Bool("seeded", cfg.Seeded).
		Float64("noise", cfg.Noise).
		Float64("eavesdrop", cfg.Eavesdrop).
		Bool("ideal_channel", opts.Channel.IsIdeal()).
		Msg("Starting BB84 run")
	res, err := s.Run()
	if err != nil {
		return fmt.Errorf("running session: %w", err)
	}
	log.Info().
		Str("outcome", res.Outcome.String()).
		Int("sifted", res.Transcript.Stats.Sifted).
		Int("key_bits", res.AliceKey.Size()).
		Msg("BB84 run complete")

	if cfg.Format == "json" {
		pb, err := res.ToProto()
		if err != nil {
			return err
		}
		out, err := protojson.MarshalOptions{Multiline: true}.Marshal(pb)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	}
	return render(stdout, res)
}

// render prints res the way the exchange is usually explained: one row per
// sequence, aligned by qubit.
func render(w io.Writer, res bb84.Result) error {
	t := res.Transcript
	var matches strings.Builder
	for i := 0; i < t.AliceBases.Size(); i++ {
		if t.AliceBases.Get(i) == t.BobBases.Get(i) {
			matches.WriteByte('^')
		} else {
			matches.WriteByte(' ')
		}
	}
	rows := [][2]string{
		{"Alice bits", t.AliceBits.String()},
		{"Alice bases", photon.FormatBases(t.AliceBases)},
		{"Bob bases", photon.FormatBases(t.BobBases)},
		{"Bob bits", t.BobBits.String()},
		{"Bases match", strings.TrimRight(matches.String(), " ")},
		{"Sifted (Alice)", t.SiftedAlice.String()},
		{"Sifted (Bob)", t.SiftedBob.String()},
		{"Outcome", res.Outcome.String()},
	}
	switch res.Outcome {
	case bb84.Secure:
		rows = append(rows,
			[2]string{"Alice key", res.AliceKey.String()},
			[2]string{"Bob key", res.BobKey.String()})
	case bb84.Compromised:
		rows = append(rows, [2]string{"Note", "first sifted bit disagrees; eavesdropping suspected, key discarded"})
	case bb84.Inconclusive:
		rows = append(rows, [2]string{"Note", "no basis matched; nothing to check"})
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-15s %s\n", r[0]+":", r[1]); err != nil {
			return err
		}
	}
	return nil
}
