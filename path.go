package mathcast

import (
	"strconv"
	"strings"
)

// Path addresses a node by position from a root. Index -1 selects an
// application's functor; any other index selects an argument. The empty path
// addresses the root.
type Path []int

// ParsePath parses a path literal: # followed by PathSep-separated signed
// integers, or a bare # for the empty path.
func ParsePath(s string) (Path, error) {
	rest, ok := strings.CutPrefix(s, "#")
	if !ok {
		return nil, &SyntaxError{Text: s, Want: "path literal"}
	}
	if rest == "" {
		return Path{}, nil
	}
	f := strings.Split(rest, PathSep)
	p := make(Path, len(f))
	for i, v := range f {
		n, err := strconv.Atoi(v)
		if err != nil || n < -1 {
			return nil, &SyntaxError{Text: s, Want: "path index"}
		}
		p[i] = n
	}
	return p, nil
}

// String formats p as a path literal.
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('#')
	for i, idx := range p {
		if i > 0 {
			b.WriteString(PathSep)
		}
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// Equal reports whether p and q contain the same indices.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Find follows p from root and returns the node it addresses.
func (p Path) Find(root *Term) (*Term, error) {
	t := root
	for i, idx := range p {
		if t.kind != KindApp {
			return nil, &PathError{Path: p, Depth: i}
		}
		switch {
		case idx == -1:
			t = t.Fnc()
		case 0 <= idx && idx < len(t.args):
			t = t.Arg(idx)
		default:
			return nil, &PathError{Path: p, Depth: i}
		}
	}
	return t, nil
}
