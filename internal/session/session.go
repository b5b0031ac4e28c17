// Package session runs a stream of messages through a machine. Setting
// lines, starting with '*', choose rotors, their settings and the plugboard;
// the lines that follow are converted under that configuration and written
// out in groups of five.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	regexp "github.com/wasilibs/go-re2"

	"github.com/pollux/enigma/internal/enigma"
	"github.com/pollux/enigma/internal/logger"
)

// GroupSize is the number of symbols per output group.
const GroupSize = 5

// plugboardStart matches the first token of the plugboard cycles.
var plugboardStart = regexp.MustCompile(`^\(`)

// Setup is a parsed setting line.
type Setup struct {
	Rotors    []string
	Setting   string
	Rings     string
	Plugboard string
}

// Option configures a Processor.
type Option func(*Processor)

// WithTrace sends every converted symbol to fn.
func WithTrace(fn enigma.TraceFunc) Option {
	return func(p *Processor) { p.trace = fn }
}

// WithGroupSize changes the output grouping; n <= 0 disables grouping.
func WithGroupSize(n int) Option {
	return func(p *Processor) { p.groupSize = n }
}

// Processor converts message streams on one machine.
type Processor struct {
	machine   *enigma.Machine
	logger    *logger.Logger
	trace     enigma.TraceFunc
	groupSize int
}

// NewProcessor returns a Processor driving m, which must not be nil. A nil
// log discards all records.
func NewProcessor(m *enigma.Machine, log *logger.Logger, opts ...Option) *Processor {
	if log == nil {
		log = logger.Noop()
	}
	p := &Processor{
		machine:   m,
		logger:    log.With("component", "session"),
		groupSize: GroupSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type messageIDKey struct{}

// MessageID returns the id Run assigned to the message being processed in
// ctx, or "" outside a message. It fits logger.TraceIDFn.
func MessageID(ctx context.Context) string {
	id, _ := ctx.Value(messageIDKey{}).(string)
	return id
}

// Run reads setting and message lines from r and writes the converted
// messages to w. Blank lines are copied through. Any configuration error
// stops the run; output converted before the error is still written.
func (p *Processor) Run(ctx context.Context, r io.Reader, w io.Writer) (err error) {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	defer func() {
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("error writing output: %w", ferr)
		}
	}()

	msgCtx := ctx
	var (
		configured bool
		lineNo     int
		converted  int
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, rerr := br.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return fmt.Errorf("error reading input: %w", rerr)
		}
		if line == "" && rerr == io.EOF {
			break
		}
		lineNo++
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "*"):
			msgCtx = context.WithValue(ctx, messageIDKey{}, uuid.NewString())
			setup, err := p.Configure(line)
			if err != nil {
				p.logger.Error(msgCtx, "setting line rejected", "line", lineNo, "err", err)
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			configured = true
			p.logger.Info(msgCtx, "machine configured",
				"rotors", strings.Join(setup.Rotors, " "),
				"setting", setup.Setting,
				"rings", setup.Rings,
				"plugboard", setup.Plugboard,
			)

		case strings.TrimSpace(line) == "":
			if _, err := bw.WriteString("\n"); err != nil {
				return fmt.Errorf("error writing output: %w", err)
			}

		default:
			if !configured {
				return fmt.Errorf("line %d: %w: no configuration for message", lineNo, enigma.ErrRotorAssignment)
			}
			msg := normalize(line, p.machine.Alphabet())
			out, err := p.machine.ConvertMessage(msg, p.trace)
			if err != nil {
				p.logger.Error(msgCtx, "message line rejected", "line", lineNo, "err", err)
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			n := utf8.RuneCountInString(out)
			converted += n
			if _, err := bw.WriteString(FormatGroups(out, p.groupSize) + "\n"); err != nil {
				return fmt.Errorf("error writing output: %w", err)
			}
			p.logger.Debug(msgCtx, "message line converted", "line", lineNo, "symbols", n)
		}

		if rerr == io.EOF {
			break
		}
	}

	p.logger.Info(ctx, "input processed", "lines", lineNo, "symbols", converted)
	return nil
}

// Configure applies a setting line to the machine. The previous rotor
// assignment is always dropped first.
func (p *Processor) Configure(line string) (Setup, error) {
	m := p.machine
	m.ResetRotors()

	setup, err := ParseSetup(line, m)
	if err != nil {
		return Setup{}, err
	}

	if err := m.InsertRotors(setup.Rotors); err != nil {
		return Setup{}, err
	}
	if err := m.SetRotors(setup.Setting); err != nil {
		m.ResetRotors()
		return Setup{}, err
	}
	if setup.Rings != "" {
		if err := m.SetRings(setup.Rings); err != nil {
			m.ResetRotors()
			return Setup{}, err
		}
	}
	plugboard, err := enigma.NewPermutation(setup.Plugboard, m.Alphabet())
	if err != nil {
		m.ResetRotors()
		return Setup{}, fmt.Errorf("plugboard: %w", err)
	}
	if err := m.SetPlugboard(plugboard); err != nil {
		m.ResetRotors()
		return Setup{}, err
	}
	return setup, nil
}

// ParseSetup splits a setting line such as
// "* B Beta III IV I AXLE (HQ) (EX) (IP) (TR) (BY)".
// Leading tokens naming rotors known to m are the rotors; the next token is
// the setting, optionally followed by ring settings; the rest is the
// plugboard in cycle notation.
func ParseSetup(line string, m *enigma.Machine) (Setup, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "*") {
		return Setup{}, fmt.Errorf("%w: setting line must start with '*'", enigma.ErrRotorAssignment)
	}
	if rest := strings.TrimPrefix(fields[0], "*"); rest != "" {
		fields[0] = rest
	} else {
		fields = fields[1:]
	}

	var setup Setup
	for len(fields) > 0 && len(setup.Rotors) < m.NumRotors() && m.InAllRotors(fields[0]) {
		setup.Rotors = append(setup.Rotors, fields[0])
		fields = fields[1:]
	}
	switch {
	case len(setup.Rotors) == 0:
		return Setup{}, fmt.Errorf("%w: no rotors named in setting line", enigma.ErrRotorAssignment)
	case len(setup.Rotors) < m.NumRotors():
		return Setup{}, fmt.Errorf("%w: %d rotors named, machine has %d slots",
			enigma.ErrRotorAssignment, len(setup.Rotors), m.NumRotors())
	case len(fields) == 0 || plugboardStart.MatchString(fields[0]):
		return Setup{}, fmt.Errorf("%w: missing rotor setting", enigma.ErrSetting)
	}

	setup.Setting = fields[0]
	fields = fields[1:]
	if len(fields) > 0 && !plugboardStart.MatchString(fields[0]) {
		setup.Rings = fields[0]
		fields = fields[1:]
	}
	setup.Plugboard = strings.Join(fields, " ")

	return setup, nil
}

// FormatGroups splits msg into space separated groups of n symbols; the
// last group may be shorter.
func FormatGroups(msg string, n int) string {
	symbols := []rune(msg)
	if n <= 0 || len(symbols) <= n {
		return msg
	}

	var b strings.Builder
	b.Grow(len(msg) + len(symbols)/n)
	for i, r := range symbols {
		if i > 0 && i%n == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// normalize drops whitespace and upper-cases letters whose lower-case form
// is not itself in the alphabet.
func normalize(s string, a *enigma.Alphabet) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case !a.Contains(r) && a.Contains(unicode.ToUpper(r)):
			return unicode.ToUpper(r)
		default:
			return r
		}
	}, s)
}
