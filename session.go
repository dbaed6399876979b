package mathcast

import (
	"log/slog"
)

// Session is a document context. It owns every node it constructs, the
// registry of declared variables, and the logger. Independent sessions share
// no state. A Session is not safe for concurrent use.
type Session struct {
	nodes    []*Term
	vars     []*Variable
	builtins map[string]bool
	log      *slog.Logger
}

// NewSession creates a session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{log: slog.Default()}
	Builtins(defaultBuiltins...).sessionOption(s)
	for _, opt := range opts {
		opt.sessionOption(s)
	}
	return s
}

// alloc creates a parentless node with the next id.
func (s *Session) alloc(kind Kind) *Term {
	t := &Term{
		s:      s,
		id:     ID(len(s.nodes)),
		kind:   kind,
		parent: NoID,
		Coef:   One,
		fnc:    NoID,
	}
	s.nodes = append(s.nodes, t)
	return t
}

// Node returns the node with the given id, or nil if there is none.
func (s *Session) Node(id ID) *Term {
	if id < 0 || int(id) >= len(s.nodes) {
		return nil
	}
	return s.nodes[id]
}

// Len returns the number of nodes the session has constructed.
func (s *Session) Len() int {
	return len(s.nodes)
}

// Num creates a ConstNum with the value n/d.
func (s *Session) Num(n, d int64) *Term {
	t := s.alloc(KindConst)
	t.Coef = R(n, d)
	return t
}

// Ref creates a RefVar with the given name.
func (s *Session) Ref(name string) *Term {
	t := s.alloc(KindRef)
	t.name = name
	return t
}

// Op creates a RefVar naming an operator. It is the same as Ref.
func (s *Session) Op(symbol string) *Term {
	return s.Ref(symbol)
}

// Str creates a string literal.
func (s *Session) Str(text string) *Term {
	t := s.alloc(KindStr)
	t.text = text
	return t
}

// PathTerm creates a path literal.
func (s *Session) PathTerm(p Path) *Term {
	t := s.alloc(KindPath)
	t.indexes = append(Path(nil), p...)
	return t
}

// App creates an application of fnc to args. The functor and arguments become
// children of the new node.
func (s *Session) App(fnc *Term, args ...*Term) *Term {
	t := s.alloc(KindApp)
	t.fnc = t.adopt(fnc)
	t.args = make([]ID, 0, len(args))
	for _, a := range args {
		t.args = append(t.args, t.adopt(a))
	}
	return t
}

// OpApp creates an application of the named operator or function to args.
func (s *Session) OpApp(name string, args ...*Term) *Term {
	return s.App(s.Op(name), args...)
}

// Logger returns the session's logger.
func (s *Session) Logger() *slog.Logger {
	return s.log
}

// IsBuiltin reports whether name is built into the session.
func (s *Session) IsBuiltin(name string) bool {
	return s.builtins[name]
}
