package mathcast

import (
	"log/slog"
	"math/big"
	"strconv"
)

// SessionOption is an option for creating a session.
type SessionOption interface {
	sessionOption(*Session)
}

type (
	loggeropt   struct{ l *slog.Logger }
	builtinsopt []string
)

// Logger sets the logger a session writes debug records to. A nil logger
// restores the default.
func Logger(l *slog.Logger) SessionOption {
	return loggeropt{l}
}

func (o loggeropt) sessionOption(s *Session) {
	if o.l == nil {
		s.log = slog.Default()
		return
	}
	s.log = o.l
}

// Builtins replaces the set of names that Resolve treats as built in and never
// looks up in the variable registry. With no arguments, no names are built in.
func Builtins(names ...string) SessionOption {
	return builtinsopt(names)
}

func (o builtinsopt) sessionOption(s *Session) {
	s.builtins = make(map[string]bool, len(o))
	for _, name := range o {
		s.builtins[name] = true
	}
}

// defaultBuiltins are the names built into every session unless Builtins is
// given.
var defaultBuiltins = []string{"e", "pi", "i", "infty", "hbar", "nabla"}

// TexOption is an option for LaTeX rendering.
type TexOption interface {
	texOption(*texctx)
}

type texctx struct {
	// ids wraps each constant, reference, and application in an htmlData tag
	// carrying the node id.
	ids bool
}

type nodeidsopt struct{}

// NodeIDs tags each constant, reference, and application in the LaTeX output
// with its node id as \htmlData{id=N}{...}, so that a renderer can attach
// events to individual nodes.
func NodeIDs() TexOption {
	return nodeidsopt{}
}

func (nodeidsopt) texOption(c *texctx) { c.ids = true }

// EvalOption is an option for numeric evaluation.
type EvalOption interface {
	evalOption(*evalctx)
}

type evalctx struct {
	prec  uint
	names map[string]*big.Float
	funcs map[string]Func
}

// DefaultPrec is the precision in bits of evaluation results when no Prec
// option is given.
const DefaultPrec = 64

type precopt uint

// Prec sets the precision in bits used for evaluation. Panics if prec is zero.
func Prec(prec uint) EvalOption {
	if prec == 0 {
		panic("mathcast: invalid precision " + strconv.FormatUint(uint64(prec), 10))
	}
	return precopt(prec)
}

func (o precopt) evalOption(c *evalctx) { c.prec = uint(o) }
