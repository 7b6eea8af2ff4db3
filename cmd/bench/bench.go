// bench.go runs a batch of BB84 exchanges for each entry in the cartesian
// product of a collection of channel parameters, e.g. qubits sent and
// eavesdropping probability, and outputs a CSV of outcome counts and key
// statistics for each combination.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/qnotes/bb84/bb84"
	"github.com/qnotes/bb84/bb84/photon"
	"github.com/qnotes/bb84/internal/logging"
)

var (
	qubits    = flag.IntSlice("qubits", []int{16, 64, 256}, "The number of qubits Alice sends per run.")
	noise     = flag.Float64Slice("noise", []float64{0}, "The probability that the channel flips a measured bit.")
	eavesdrop = flag.Float64Slice("eavesdrop", []float64{0, 0.5, 1}, "The probability that Eve intercepts and resends a qubit.")
	trials    = flag.Int("trials", 1000, "The number of runs per parameter combination.")
	seed      = flag.Int64("seed", 42, "Seed for the randomness of each combination.")
	logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn or error.")
	pretty    = flag.Bool("pretty", false, "Human-readable log output.")
)

var (
	inputs  = []string{"qubits", "noise", "eavesdrop"}
	columns = []string{"Qubits", "Noise", "Eavesdrop", "Trials", "Secure", "Compromised",
		"Inconclusive", "MeanSiftedFraction", "StdSiftedFraction", "MeanKeyBits", "MeanErrorRate"}
)

var validate = validator.New()

type config struct {
	Qubits    []int     `validate:"min=1,dive,min=1"`
	Noise     []float64 `validate:"min=1,dive,min=0,max=1"`
	Eavesdrop []float64 `validate:"min=1,dive,min=0,max=1"`
	Trials    int       `validate:"min=1"`
	LogLevel  string    `validate:"omitempty,oneof=debug info warn error"`
}

// An Experiment packages together the result of benchmarking a single
// parameterization for easy formatting.
type Experiment struct {
	// Fields corresponding to experiment parameters
	Qubits    int
	Noise     float64
	Eavesdrop float64
	Trials    int

	// Fields corresponding to experiment results
	bb84.Summary
}

func main() {
	flag.Parse()
	log, err := logging.New(logging.Config{Level: *logLevel, Pretty: *pretty})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(2)
	}
	if err := run(os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("Benchmark failed")
	}
}

// run benches every combination of the parsed flags and writes the CSV to w.
func run(w io.Writer, log zerolog.Logger) error {
	cfg := config{Qubits: *qubits, Noise: *noise, Eavesdrop: *eavesdrop, Trials: *trials, LogLevel: *logLevel}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	var args [][]interface{}
	for _, inp := range inputs {
		vals, err := lookupInput(inp)
		if err != nil {
			return err
		}
		args = append(args, vals)
	}
	if _, err := fmt.Fprintln(w, header()); err != nil {
		return err
	}
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	var werr error
	applyCartesian(func(args []interface{}) {
		if werr != nil {
			return
		}
		exp := &Experiment{
			Qubits:    args[inpIndex("qubits")].(int),
			Noise:     args[inpIndex("noise")].(float64),
			Eavesdrop: args[inpIndex("eavesdrop")].(float64),
			Trials:    cfg.Trials,
		}
		if err := bench(log, exp, *seed); err != nil {
			log.Error().Err(err).Interface("experiment", exp).Msg("Benching failed")
			return
		}
		if err := writeLine(w, tmpl, exp); err != nil {
			werr = fmt.Errorf("writing line: %w", err)
		}
	}, args)
	return werr
}

func inpIndex(v string) int {
	for i, inp := range inputs {
		if inp == v {
			return i
		}
	}
	return -1
}

func bench(log zerolog.Logger, exp *Experiment, seed int64) error {
	id := uuid.New()
	s, err := bb84.NewSession(bb84.SessionOpts{
		Qubits:  exp.Qubits,
		Rand:    rand.New(rand.NewSource(seed)),
		Channel: photon.ChannelOpts{Noise: exp.Noise, Eavesdrop: exp.Eavesdrop},
	})
	if err != nil {
		return err
	}
	log.Debug().
		Str("experiment", id.String()).
		Int("qubits", exp.Qubits).
		Float64("noise", exp.Noise).
		Float64("eavesdrop", exp.Eavesdrop).
		Msg("Starting experiment")

	results := make([]bb84.Result, 0, exp.Trials)
	for i := 0; i < exp.Trials; i++ {
		res, err := s.Run()
		if err != nil {
			return fmt.Errorf("trial %d: %w", i, err)
		}
		results = append(results, res)
	}
	exp.Summary = bb84.Summarize(results)

	log.Info().
		Str("experiment", id.String()).
		Int("secure", exp.Secure).
		Int("compromised", exp.Compromised).
		Int("inconclusive", exp.Inconclusive).
		Msg("Experiment complete")
	return nil
}

func writeLine(w io.Writer, tmpl *template.Template, exp *Experiment) error {
	return tmpl.Execute(w, exp)
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func lookupInput(name string) ([]interface{}, error) {
	var r []interface{}
	if v, err := flag.CommandLine.GetIntSlice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else if v, err := flag.CommandLine.GetFloat64Slice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else {
		return nil, fmt.Errorf("unknown type for input %q", name)
	}
	return r, nil
}

func applyCartesian(f func([]interface{}), args [][]interface{}) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]interface{}, len(args))
		r := make([][]interface{}, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]interface{}, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}
