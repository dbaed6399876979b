//go:build go1.18
// +build go1.18

package mathcast_test

import (
	"testing"

	"github.com/zephyrtronium/mathcast"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("a - 2*b")
	f.Add("{x | x in A}")
	f.Add("let x, y in A, z in B")
	f.Add("f(#0:-1, \"s\")^(-x)")
	f.Add("1×2")
	f.Add("x * -1.5")
	f.Add("x^(-1.5)")
	f.Add("(-2)/x + 0.050")
	f.Fuzz(func(t *testing.T, s string) {
		sess := mathcast.NewSession()
		r, err := sess.Parse(s)
		if err != nil {
			return
		}
		str := r.Str()
		again, err := sess.Parse(str)
		if err != nil {
			t.Fatalf("%q has canonical string %q, which fails to parse: %v", s, str, err)
		}
		if got := again.Str(); got != str {
			t.Fatalf("%q has canonical string %q, which reparses as %q", s, str, got)
		}
		c := r.Clone()
		if got := c.Str(); got != str {
			t.Fatalf("%q has clone %q, want %q", s, got, str)
		}
		ids := make(map[mathcast.ID]bool)
		for _, n := range mathcast.All(r) {
			ids[n.ID()] = true
		}
		for _, n := range mathcast.All(c) {
			if ids[n.ID()] {
				t.Fatalf("%q: clone reuses id %d", s, n.ID())
			}
		}
		if r.Parent() != nil {
			t.Fatalf("%q gave a root with a parent", s)
		}
		if err := r.Verify(); err != nil {
			t.Fatalf("%q gave a malformed tree: %v", s, err)
		}
		for _, n := range mathcast.All(r) {
			got, err := n.Path().Find(r)
			if err != nil || got != n {
				t.Fatalf("%q: path %v of node %d does not find it", s, n.Path(), n.ID())
			}
		}
	})
}
