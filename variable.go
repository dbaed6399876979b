package mathcast

import (
	"context"
	"log/slog"
	"strings"
)

// Variable is a name bound to an expression.
type Variable struct {
	// Name is the variable's name.
	Name string
	// Expr is the bound expression.
	Expr *Term
	// Deps are the variables that Expr refers to, in order of first
	// reference. A variable never depends on itself.
	Deps []*Variable
}

// Declare binds name to expr in the session's registry. Every letter-named
// reference in expr other than name itself, functors, and builtins must
// already be declared; otherwise the result is a *NameError and nothing is
// registered. Redeclaring a name replaces the earlier binding for lookups.
func (s *Session) Declare(name string, expr *Term) (*Variable, error) {
	v := &Variable{Name: name, Expr: expr}
	seen := make(map[*Variable]bool)
	for _, ref := range s.varRefs(expr) {
		if ref.name == name {
			continue
		}
		dep := s.Lookup(ref.name)
		if dep == nil {
			return nil, &NameError{Name: ref.name}
		}
		if !seen[dep] {
			seen[dep] = true
			v.Deps = append(v.Deps, dep)
		}
	}
	s.vars = append(s.vars, v)
	if len(v.Deps) != 0 && s.log.Enabled(context.Background(), slog.LevelDebug) {
		names := make([]string, len(v.Deps))
		for i, d := range v.Deps {
			names[i] = d.Name
		}
		s.log.Debug("variable declared", slog.String("name", name), slog.String("depends", strings.Join(names, " ")))
	}
	return v, nil
}

// Lookup returns the most recently declared variable with the given name, or
// nil if there is none.
func (s *Session) Lookup(name string) *Variable {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].Name == name {
			return s.vars[i]
		}
	}
	return nil
}

// Variables returns the declared variables in declaration order.
func (s *Session) Variables() []*Variable {
	return append([]*Variable(nil), s.vars...)
}

// Resolve binds every letter-named reference under root that is not a functor
// or a builtin to its declared variable. The first reference that is not
// declared gives a *NameError; references before it remain bound.
func (s *Session) Resolve(root *Term) error {
	for _, ref := range s.varRefs(root) {
		v := s.Lookup(ref.name)
		if v == nil {
			return &NameError{Name: ref.name}
		}
		ref.v = v
	}
	return nil
}

// varRefs returns the references under root that name variables.
func (s *Session) varRefs(root *Term) []*Term {
	var r []*Term
	for _, t := range All(root) {
		if t.kind != KindRef || !isLetterOrAt(t.name) || s.builtins[t.name] {
			continue
		}
		if p := t.Parent(); p != nil && p.fnc == t.id {
			continue
		}
		r = append(r, t)
	}
	return r
}
