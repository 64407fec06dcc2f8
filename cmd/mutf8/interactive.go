package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/mutf8"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inputMode int

const (
	modeText inputMode = iota
	modeHex
)

func (m inputMode) String() string {
	if m == modeHex {
		return "MUTF-8 hex"
	}
	return "text"
}

// analysis is what the inspector shows for the current input.
type analysis struct {
	err      error
	encoded  string
	decoded  string
	seqs     []sequenceReport
	borrowed bool
}

func analyzeText(s string) analysis {
	enc := mutf8.Encode(s)
	seqs, err := scanSequences(enc.Bytes(), 0)
	return analysis{
		encoded:  hexBytes(enc.Bytes()),
		decoded:  s,
		seqs:     seqs,
		borrowed: enc.Borrowed(),
		err:      err,
	}
}

func analyzeHex(s string) analysis {
	data, err := parseHex(s)
	if err != nil {
		return analysis{err: err}
	}
	r := analysis{encoded: hexBytes(data)}
	txt, err := mutf8.Decode(data)
	if err == nil {
		r.decoded = txt.String()
		r.borrowed = txt.Borrowed()
	}
	// sequences before the failure are still worth showing
	r.seqs, _ = scanSequences(data, 0)
	r.err = err
	return r
}

type inspectorModel struct {
	log    *zap.Logger
	input  textinput.Model
	result analysis
	mode   inputMode
}

func newInspectorModel(mode inputMode, value string, log *zap.Logger) *inspectorModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Width = 60
	ti.SetValue(value)
	ti.Focus()

	m := &inspectorModel{log: log, input: ti, mode: mode}
	m.setPlaceholder()
	m.analyze()
	return m
}

func (m *inspectorModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.toggleMode()
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.analyze()
	}
	return m, cmd
}

// toggleMode switches between text and hex input, carrying the current
// input across when it converts cleanly.
func (m *inspectorModel) toggleMode() {
	switch m.mode {
	case modeText:
		m.mode = modeHex
		m.input.SetValue(m.result.encoded)
	case modeHex:
		m.mode = modeText
		if m.result.err != nil {
			m.input.SetValue("")
		} else {
			m.input.SetValue(m.result.decoded)
		}
	}
	m.input.CursorEnd()
	m.setPlaceholder()
	m.analyze()
}

func (m *inspectorModel) setPlaceholder() {
	if m.mode == modeHex {
		m.input.Placeholder = "c0 80 ed a0 bd ed b8 80"
	} else {
		m.input.Placeholder = "type text to encode"
	}
}

func (m *inspectorModel) analyze() {
	if m.mode == modeHex {
		m.result = analyzeHex(m.input.Value())
	} else {
		m.result = analyzeText(m.input.Value())
	}
	m.log.Debug("inspector input",
		zap.Stringer("mode", m.mode),
		zap.Int("sequences", len(m.result.seqs)),
		zap.Error(m.result.err),
	)
}

func (m *inspectorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MUTF-8 Inspector"))
	b.WriteString(" ")
	b.WriteString(labelStyle.Render("input: " + m.mode.String()))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.mode == modeText {
		b.WriteString(labelStyle.Render("MUTF-8: "))
		b.WriteString(resultStyle.Render(m.result.encoded))
	} else if m.result.err == nil {
		b.WriteString(labelStyle.Render("Text:   "))
		b.WriteString(resultStyle.Render(fmt.Sprintf("%q", m.result.decoded)))
	}
	if m.result.err == nil {
		form := "owned"
		if m.result.borrowed {
			form = "borrowed"
		}
		b.WriteString(helpStyle.Render(" (" + form + ")"))
	}
	b.WriteString("\n\n")

	b.WriteString(renderSequenceTable(m.result.seqs, true))
	if m.result.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.result.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab switch text/hex • esc quit"))
	return b.String()
}

func (a *app) interactive(cmd string) error {
	mode, value := modeText, a.opts.text
	if cmd == "decode" || a.opts.hasHex {
		mode, value = modeHex, a.opts.hex
	}
	p := tea.NewProgram(newInspectorModel(mode, value, a.log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
