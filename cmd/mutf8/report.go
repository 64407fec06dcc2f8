package main

import (
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/wippyai/mutf8"
	"github.com/wippyai/mutf8/errors"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	hexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	plainClassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	specialClassStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFB86C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

type encodeReport struct {
	Hex      string `json:"hex"`
	Len      int    `json:"len"`
	InputLen int    `json:"input_len"`
	Borrowed bool   `json:"borrowed"`
	Framed   bool   `json:"framed,omitempty"`
}

type decodeReport struct {
	Error    *errorReport `json:"error,omitempty"`
	Text     string       `json:"text"`
	Rest     string       `json:"rest,omitempty"`
	Len      int          `json:"len"`
	Borrowed bool         `json:"borrowed"`
}

type inspectReport struct {
	Error     *errorReport     `json:"error,omitempty"`
	Rest      string           `json:"rest,omitempty"`
	Sequences []sequenceReport `json:"sequences"`
}

type sequenceReport struct {
	Bytes  string `json:"bytes"`
	Scalar string `json:"scalar"`
	Class  string `json:"class"`
	Offset int    `json:"offset"`
}

type errorReport struct {
	Phase  string `json:"phase,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
	Offset *int   `json:"offset,omitempty"`
	Msg    string `json:"message"`
}

func newErrorReport(err error) *errorReport {
	if err == nil {
		return nil
	}
	r := &errorReport{Msg: err.Error()}
	var e *errors.Error
	if stderrors.As(err, &e) {
		r.Phase = string(e.Phase)
		r.Kind = string(e.Kind)
		r.Detail = e.Detail
		if e.Kind.Positional() {
			off := e.Offset
			r.Offset = &off
		}
	}
	return r
}

func newSequenceReport(b []byte, base int, s mutf8.Sequence) sequenceReport {
	return sequenceReport{
		Offset: base + s.Offset,
		Bytes:  hexBytes(b[s.Offset : s.Offset+s.Len]),
		Scalar: fmt.Sprintf("U+%04X", s.Rune),
		Class:  s.Class.String(),
	}
}

// scanSequences returns every sequence up to the first decode error.
// Reported offsets are shifted by base.
func scanSequences(b []byte, base int) ([]sequenceReport, error) {
	seqs := []sequenceReport{}
	err := mutf8.Scan(b, func(s mutf8.Sequence) bool {
		seqs = append(seqs, newSequenceReport(b, base, s))
		return true
	})
	return seqs, err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeSequenceTable renders sequences as aligned columns.
func writeSequenceTable(w io.Writer, seqs []sequenceReport, styled bool) {
	fmt.Fprint(w, renderSequenceTable(seqs, styled))
}

func renderSequenceTable(seqs []sequenceReport, styled bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	header := fmt.Sprintf("%-8s %-18s %-10s %s", "OFFSET", "BYTES", "SCALAR", "CLASS")
	b.WriteString(style(headerStyle, header))
	b.WriteString("\n")
	for _, s := range seqs {
		classStyle := plainClassStyle
		if s.Class == mutf8.ClassNUL.String() || s.Class == mutf8.ClassSurrogatePair.String() {
			classStyle = specialClassStyle
		}
		b.WriteString(style(offsetStyle, fmt.Sprintf("%-8d", s.Offset)))
		b.WriteString(" ")
		b.WriteString(style(hexStyle, fmt.Sprintf("%-18s", s.Bytes)))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%-10s", s.Scalar))
		b.WriteString(" ")
		b.WriteString(style(classStyle, s.Class))
		b.WriteString("\n")
	}
	return b.String()
}

func hexBytes(b []byte) string {
	return fmt.Sprintf("% x", b)
}

// parseHex accepts hex digits with optional whitespace between bytes.
func parseHex(s string) ([]byte, error) {
	compact := strings.Join(strings.Fields(s), "")
	b, err := hex.DecodeString(compact)
	if err != nil {
		return nil, errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("invalid hex input: %v", err))
	}
	return b, nil
}
