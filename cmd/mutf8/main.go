package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/mutf8"
	"github.com/wippyai/mutf8/errors"
)

const usage = `Usage: mutf8 <command> [flags]

Commands:
  encode   convert UTF-8 text to MUTF-8 (-text s | -in file | stdin)
  decode   convert MUTF-8 bytes to UTF-8 text (-hex s | -in file | stdin)
  inspect  list every sequence in MUTF-8 input (-hex s | -text s | -in file | stdin)

Flags (all commands):
  -format text|json  output format
  -config file       TOML config file
  -raw               encode: write raw bytes instead of hex
  -framed            use the u16 length-prefixed form
  -v                 verbose logging
  -i                 interactive inspector
`

// options are the parsed command line of one invocation.
type options struct {
	cfg         Config
	inFile      string
	text        string
	hex         string
	hasText     bool
	hasHex      bool
	interactive bool
}

type app struct {
	log    *zap.Logger
	in     io.Reader
	out    io.Writer
	opts   options
	styled bool
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(os.Args[1], os.Args[2:], os.Stdin, os.Stdout, isTerminal); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, stdin io.Reader, stdout io.Writer, isTerminal bool) error {
	switch cmd {
	case "encode", "decode", "inspect":
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	opts, err := parseFlags(cmd, args)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if opts.cfg.Verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
	}
	defer func() { _ = log.Sync() }()

	a := &app{
		log:    log,
		in:     stdin,
		out:    stdout,
		opts:   opts,
		styled: opts.cfg.Styled(isTerminal),
	}

	if opts.interactive {
		return a.interactive(cmd)
	}

	switch cmd {
	case "encode":
		return a.encode()
	case "decode":
		return a.decode()
	default:
		return a.inspect()
	}
}

func parseFlags(cmd string, args []string) (options, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "", "TOML config file")
		format      = fs.String("format", formatText, "Output format: text or json")
		color       = fs.String("color", colorAuto, "Styled output: auto, always or never")
		raw         = fs.Bool("raw", false, "Write raw MUTF-8 bytes instead of hex")
		framed      = fs.Bool("framed", false, "Use the u16 length-prefixed form")
		verbose     = fs.Bool("v", false, "Verbose logging")
		interactive = fs.Bool("i", false, "Interactive inspector")
		inFile      = fs.String("in", "", "Read input from file")
		text        = fs.String("text", "", "Input text")
		hexIn       = fs.String("hex", "", "Input bytes as hex")
	)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = LoadConfig(*configPath)
		if err != nil {
			return options{}, err
		}
	}

	opts := options{inFile: *inFile, text: *text, hex: *hexIn, interactive: *interactive}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = *format
		case "color":
			cfg.Color = *color
		case "raw":
			cfg.Raw = *raw
		case "framed":
			cfg.Framed = *framed
		case "v":
			cfg.Verbose = *verbose
		case "text":
			opts.hasText = true
		case "hex":
			opts.hasHex = true
		}
	})
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	opts.cfg = cfg

	sources := 0
	for _, set := range []bool{opts.inFile != "", opts.hasText, opts.hasHex} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return options{}, fmt.Errorf("use only one of -in, -text and -hex")
	}
	if cmd == "encode" && opts.hasHex {
		return options{}, fmt.Errorf("encode takes text input, not -hex")
	}
	if cmd == "decode" && opts.hasText {
		return options{}, fmt.Errorf("decode takes MUTF-8 input, not -text")
	}
	return opts, nil
}

// readInput returns the raw input bytes: the -text value, the decoded
// -hex value, the -in file or stdin.
func (a *app) readInput() ([]byte, error) {
	switch {
	case a.opts.hasText:
		return []byte(a.opts.text), nil
	case a.opts.hasHex:
		return parseHex(a.opts.hex)
	case a.opts.inFile != "":
		data, err := os.ReadFile(a.opts.inFile)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(a.in)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func (a *app) encode() error {
	data, err := a.readInput()
	if err != nil {
		return err
	}
	s := string(data)

	var out []byte
	borrowed := false
	if a.opts.cfg.Framed {
		out, err = mutf8.AppendPrefixed(nil, s)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	} else {
		enc := mutf8.Encode(s)
		out, borrowed = enc.Bytes(), enc.Borrowed()
	}
	a.log.Debug("encoded",
		zap.Int("input_len", len(data)),
		zap.Int("len", len(out)),
		zap.Bool("borrowed", borrowed),
		zap.Bool("framed", a.opts.cfg.Framed),
	)

	switch {
	case a.opts.cfg.Format == formatJSON:
		return writeJSON(a.out, encodeReport{
			Hex:      hexBytes(out),
			Len:      len(out),
			InputLen: len(data),
			Borrowed: borrowed,
			Framed:   a.opts.cfg.Framed,
		})
	case a.opts.cfg.Raw:
		_, err := a.out.Write(out)
		return err
	}
	_, err = fmt.Fprintln(a.out, hexBytes(out))
	return err
}

func (a *app) decode() error {
	data, err := a.readInput()
	if err != nil {
		return err
	}

	var (
		txt  mutf8.Text
		rest []byte
	)
	if a.opts.cfg.Framed {
		txt, rest, err = mutf8.CutPrefixed(data)
	} else {
		txt, err = mutf8.Decode(data)
	}
	a.log.Debug("decoded",
		zap.Int("input_len", len(data)),
		zap.Int("len", txt.Len()),
		zap.Bool("borrowed", txt.Borrowed()),
		zap.Error(err),
	)

	if a.opts.cfg.Format == formatJSON {
		r := decodeReport{Error: newErrorReport(err)}
		if err == nil {
			r.Text = txt.String()
			r.Len = txt.Len()
			r.Borrowed = txt.Borrowed()
			if len(rest) > 0 {
				r.Rest = hexBytes(rest)
			}
		}
		if werr := writeJSON(a.out, r); werr != nil {
			return werr
		}
	}
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if a.opts.cfg.Format == formatJSON {
		return nil
	}

	if _, err := fmt.Fprintln(a.out, txt.String()); err != nil {
		return err
	}
	if len(rest) > 0 {
		_, err = fmt.Fprintf(a.out, "rest: %s\n", hexBytes(rest))
	}
	return err
}

func (a *app) inspect() error {
	data, err := a.readInput()
	if err != nil {
		return err
	}
	switch {
	case a.opts.hasText && a.opts.cfg.Framed:
		if data, err = mutf8.AppendPrefixed(nil, a.opts.text); err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
	case a.opts.hasText:
		data = mutf8.Encode(a.opts.text).Bytes()
	}

	body, base := data, 0
	var rest []byte
	if a.opts.cfg.Framed {
		body, rest, err = mutf8.SplitPrefixed(data)
		if err != nil {
			return a.writeInspect(nil, nil, err)
		}
		base = mutf8.PrefixSize
	}

	seqs, err := scanSequences(body, base)
	if err != nil && a.opts.cfg.Framed {
		err = errors.Rebase(err, base, errors.PhaseFrame, nil)
	}
	a.log.Debug("scanned",
		zap.Int("input_len", len(data)),
		zap.Int("sequences", len(seqs)),
		zap.Bool("framed", a.opts.cfg.Framed),
		zap.Error(err),
	)
	return a.writeInspect(seqs, rest, err)
}

func (a *app) writeInspect(seqs []sequenceReport, rest []byte, err error) error {
	if a.opts.cfg.Format == formatJSON {
		r := inspectReport{Sequences: seqs, Error: newErrorReport(err)}
		if r.Sequences == nil {
			r.Sequences = []sequenceReport{}
		}
		if len(rest) > 0 {
			r.Rest = hexBytes(rest)
		}
		if werr := writeJSON(a.out, r); werr != nil {
			return werr
		}
	} else {
		writeSequenceTable(a.out, seqs, a.styled)
		if len(rest) > 0 {
			fmt.Fprintf(a.out, "rest: %s\n", hexBytes(rest))
		}
	}
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}
