// Package formatter provides observers that print a subject's value in a
// fixed numeric base.
package formatter

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/observer/internal/log"
	"github.com/zjrosen/observer/internal/observer"
)

// Formatter is an observer of a value holder.
type Formatter = observer.Observer[observer.Subject]

// Option configures a formatter.
type Option func(*printer)

// WithStyle renders the formatter's type label through style.
func WithStyle(style lipgloss.Style) Option {
	return func(p *printer) {
		p.style = style
		p.styled = true
	}
}

// printer is the output half shared by every formatter. Formatters keep no
// state between updates beyond where and how they print.
type printer struct {
	out    io.Writer
	style  lipgloss.Style
	styled bool
}

func newPrinter(w io.Writer, opts []Option) printer {
	if w == nil {
		w = os.Stdout
	}
	p := printer{out: w}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// print writes "<Label>: '<name>' has now <base> data = <digits>".
func (p *printer) print(label, base, digits string, s observer.Subject) {
	if p.styled {
		label = p.style.Render(label)
	}
	if _, err := fmt.Fprintf(p.out, "%s: '%s' has now %s data = %s\n", label, s.Name(), base, digits); err != nil {
		log.ErrorErr(log.CatFormatter, "Failed to write update", err, "formatter", label, "subject", s.Name())
	}
}

// HexFormatter prints the value in lowercase hexadecimal with a 0x prefix.
type HexFormatter struct {
	printer
}

// NewHex returns a HexFormatter writing to w (os.Stdout when nil).
func NewHex(w io.Writer, opts ...Option) *HexFormatter {
	return &HexFormatter{printer: newPrinter(w, opts)}
}

// Update implements observer.Observer.
func (f *HexFormatter) Update(s observer.Subject) {
	f.print("HexFormatter", "hex", fmt.Sprintf("%#x", s.Value()), s)
}

func (f *HexFormatter) String() string { return "HexFormatter" }

// BinaryFormatter prints the value in binary with a 0b prefix.
type BinaryFormatter struct {
	printer
}

// NewBinary returns a BinaryFormatter writing to w (os.Stdout when nil).
func NewBinary(w io.Writer, opts ...Option) *BinaryFormatter {
	return &BinaryFormatter{printer: newPrinter(w, opts)}
}

// Update implements observer.Observer.
func (f *BinaryFormatter) Update(s observer.Subject) {
	f.print("BinaryFormatter", "bin", fmt.Sprintf("%#b", s.Value()), s)
}

func (f *BinaryFormatter) String() string { return "BinaryFormatter" }

// OctalFormatter prints the value in octal with a 0o prefix.
type OctalFormatter struct {
	printer
}

// NewOctal returns an OctalFormatter writing to w (os.Stdout when nil).
func NewOctal(w io.Writer, opts ...Option) *OctalFormatter {
	return &OctalFormatter{printer: newPrinter(w, opts)}
}

// Update implements observer.Observer.
func (f *OctalFormatter) Update(s observer.Subject) {
	f.print("OctalFormatter", "oct", fmt.Sprintf("%O", s.Value()), s)
}

func (f *OctalFormatter) String() string { return "OctalFormatter" }

// DecimalFormatter prints the value in base 10.
type DecimalFormatter struct {
	printer
}

// NewDecimal returns a DecimalFormatter writing to w (os.Stdout when nil).
func NewDecimal(w io.Writer, opts ...Option) *DecimalFormatter {
	return &DecimalFormatter{printer: newPrinter(w, opts)}
}

// Update implements observer.Observer.
func (f *DecimalFormatter) Update(s observer.Subject) {
	f.print("DecimalFormatter", "dec", fmt.Sprintf("%d", s.Value()), s)
}

func (f *DecimalFormatter) String() string { return "DecimalFormatter" }

// Kind names accepted by New and by the observers config key.
const (
	KindHex     = "hex"
	KindBinary  = "bin"
	KindOctal   = "oct"
	KindDecimal = "dec"
)

var constructors = map[string]func(io.Writer, ...Option) Formatter{
	KindHex:     func(w io.Writer, o ...Option) Formatter { return NewHex(w, o...) },
	KindBinary:  func(w io.Writer, o ...Option) Formatter { return NewBinary(w, o...) },
	KindOctal:   func(w io.Writer, o ...Option) Formatter { return NewOctal(w, o...) },
	KindDecimal: func(w io.Writer, o ...Option) Formatter { return NewDecimal(w, o...) },
}

// New builds the formatter registered under kind.
func New(kind string, w io.Writer, opts ...Option) (Formatter, error) {
	ctor, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown formatter kind %q (valid: %v)", kind, Kinds())
	}
	return ctor(w, opts...), nil
}

// Kinds returns the registered kind names, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// IsKind reports whether kind names a registered formatter.
func IsKind(kind string) bool {
	_, ok := constructors[kind]
	return ok
}
