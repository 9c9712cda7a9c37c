// simmsg packs and unpacks C-layout messages from the command line.
//
// Usage:
//
//	simmsg [flags] pack <schema> <value>...
//	simmsg [flags] unpack <schema>          (with --hex or --from)
//	simmsg [flags] roundtrip <schema> <value>...
//	simmsg profiles
//
// Flags go before the command. Array values are comma separated; C, S and
// s take the text as given.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/rawbytedev/simmsg"
	"github.com/rawbytedev/simmsg/internal/logging"
	"github.com/rawbytedev/simmsg/pkg/capture"
	"github.com/rawbytedev/simmsg/pkg/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	mode       string
	outProfile string
	inProfile  string
	outOrder   string
	inOrder    string
	capacity   int
	capture    string
	from       string
	hexPayload string
	logLevel   string
}

func newFlagSet(f *flags, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("simmsg", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	// flags stop at the command so negative values reach the schema
	fs.SetInterspersed(false)
	fs.StringVarP(&f.configPath, "config", "c", "", "TOML or YAML settings file")
	fs.StringVarP(&f.mode, "mode", "m", "binary", "layout mode: binary or character")
	fs.StringVar(&f.outProfile, "out-profile", "", "outgoing data model (LP64, ILP64, LLP64, ILP32, LP32, native)")
	fs.StringVar(&f.inProfile, "in-profile", "", "incoming data model")
	fs.StringVar(&f.outOrder, "out-order", "", "outgoing byte order (native, little, big, network)")
	fs.StringVar(&f.inOrder, "in-order", "", "incoming byte order")
	fs.IntVar(&f.capacity, "capacity", 0, "incoming buffer size")
	fs.StringVar(&f.capture, "capture", "", "append packed messages to this capture file")
	fs.StringVar(&f.from, "from", "", "unpack every message in this capture file")
	fs.StringVar(&f.hexPayload, "hex", "", "unpack this hex encoded payload")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: simmsg [flags] pack|unpack|roundtrip|profiles ...\n\nFlags:\n")
		fs.PrintDefaults()
	}
	return fs
}

func run(args []string, stdout, stderr io.Writer) error {
	var f flags
	fs := newFlagSet(&f, stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := settings(fs, &f)
	if err != nil {
		return err
	}
	logCfg := logging.DefaultConfig()
	logCfg.NoColor = cfg.Log.NoColor
	if lvl, ok := logging.ParseLevel(cfg.Log.Level); ok {
		logCfg.Level = lvl
	}
	log := logging.New("simmsg", stderr, logCfg)

	mode, err := parseMode(f.mode)
	if err != nil {
		return err
	}

	switch cmd := rest[0]; cmd {
	case "profiles":
		return printProfiles(stdout)
	case "pack":
		if len(rest) < 2 {
			return errors.New("pack needs a schema")
		}
		m, err := newMarshaller(cfg, &log)
		if err != nil {
			return err
		}
		return runPack(m, &f, mode, rest[1], rest[2:], stdout)
	case "unpack":
		if len(rest) != 2 {
			return errors.New("unpack needs exactly one schema")
		}
		m, err := newMarshaller(cfg, &log)
		if err != nil {
			return err
		}
		return runUnpack(m, &f, mode, rest[1], stdout, log)
	case "roundtrip":
		if len(rest) < 2 {
			return errors.New("roundtrip needs a schema")
		}
		m, err := newMarshaller(cfg, &log)
		if err != nil {
			return err
		}
		return runRoundTrip(m, mode, rest[1], rest[2:], stdout)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// settings loads the config file, if any, and applies flags the user set.
func settings(fs *pflag.FlagSet, f *flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if fs.Changed("out-profile") {
		cfg.Outgoing.Profile = f.outProfile
	}
	if fs.Changed("in-profile") {
		cfg.Incoming.Profile = f.inProfile
	}
	if fs.Changed("out-order") {
		cfg.Outgoing.ByteOrder = f.outOrder
	}
	if fs.Changed("in-order") {
		cfg.Incoming.ByteOrder = f.inOrder
	}
	if fs.Changed("capacity") {
		cfg.Capacity = f.capacity
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newMarshaller(cfg config.Config, log *zerolog.Logger) (*simmsg.Marshaller, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = log
	return simmsg.New(opts), nil
}

func parseMode(s string) (simmsg.Mode, error) {
	switch strings.ToLower(s) {
	case "binary", "b":
		return simmsg.Binary, nil
	case "character", "char", "c":
		return simmsg.Character, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func printProfiles(w io.Writer) error {
	kinds := []simmsg.Kind{
		simmsg.KindBool, simmsg.KindChar, simmsg.KindShort, simmsg.KindInt,
		simmsg.KindLong, simmsg.KindFloat, simmsg.KindDouble,
	}
	for _, p := range append(simmsg.Profiles(), simmsg.NativeProfile()) {
		m := simmsg.New(simmsg.Options{OutgoingProfile: p})
		var parts []string
		for _, k := range kinds {
			width, via, err := m.ResolveCodec(simmsg.Outgoing, k)
			switch {
			case err != nil:
				parts = append(parts, fmt.Sprintf("%s=unsupported", k))
			case via != k:
				parts = append(parts, fmt.Sprintf("%s=%d(as %s)", k, width, via))
			default:
				parts = append(parts, fmt.Sprintf("%s=%d", k, width))
			}
		}
		fmt.Fprintf(w, "%-6s %s\n", p.Name, strings.Join(parts, " "))
	}
	return nil
}

func runPack(m *simmsg.Marshaller, f *flags, mode simmsg.Mode, schema string, raw []string, stdout io.Writer) error {
	values, err := parseValues(schema, raw)
	if err != nil {
		return err
	}
	if err := m.Pack(mode, schema, values...); err != nil {
		return err
	}
	fmt.Fprintln(stdout, hex.EncodeToString(m.ReadOutgoing()))
	if f.capture == "" {
		return nil
	}
	out, err := os.OpenFile(f.capture, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer out.Close()
	frame := capture.FromMarshaller(m, simmsg.Outgoing, mode, unpackSchema(schema, values))
	return capture.NewWriter(out).Write(frame)
}

func runUnpack(m *simmsg.Marshaller, f *flags, mode simmsg.Mode, schema string, stdout io.Writer, log zerolog.Logger) error {
	switch {
	case f.hexPayload != "":
		payload, err := hex.DecodeString(f.hexPayload)
		if err != nil {
			return fmt.Errorf("decode --hex: %w", err)
		}
		m.ResetIncoming(len(payload))
		copy(m.IncomingBuffer(), payload)
		vals, err := m.UnpackAll(mode, schema)
		if err != nil {
			return err
		}
		printValues(stdout, vals)
		return nil
	case f.from != "":
		in, err := os.Open(f.from)
		if err != nil {
			return fmt.Errorf("open capture: %w", err)
		}
		defer in.Close()
		r := capture.NewReader(in)
		for n := 0; ; n++ {
			frame, err := r.Read()
			if errors.Is(err, io.EOF) {
				log.Debug().Int("frames", n).Msg("capture replayed")
				return nil
			}
			if err != nil {
				return fmt.Errorf("frame %d: %w", n, err)
			}
			frameMode, err := capture.Replay(m, frame)
			if err != nil {
				return fmt.Errorf("frame %d: %w", n, err)
			}
			s := schema
			if s == "-" {
				s = frame.Schema
			}
			vals, err := m.UnpackAll(frameMode, s)
			if err != nil {
				return fmt.Errorf("frame %d: %w", n, err)
			}
			printValues(stdout, vals)
		}
	default:
		return errors.New("unpack needs --hex or --from")
	}
}

func runRoundTrip(m *simmsg.Marshaller, mode simmsg.Mode, schema string, raw []string, stdout io.Writer) error {
	values, err := parseValues(schema, raw)
	if err != nil {
		return err
	}
	if err := m.Pack(mode, schema, values...); err != nil {
		return err
	}
	fmt.Fprintln(stdout, hex.EncodeToString(m.ReadOutgoing()))
	m.CrossCopy()
	vals, err := m.UnpackAll(mode, unpackSchema(schema, values))
	if err != nil {
		return err
	}
	printValues(stdout, vals)
	return nil
}

func printValues(w io.Writer, vals []any) {
	for _, v := range vals {
		switch x := v.(type) {
		case string:
			fmt.Fprintf(w, "%q\n", x)
		default:
			fmt.Fprintf(w, "%v\n", x)
		}
	}
}
