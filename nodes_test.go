package mathcast

import (
	"errors"
	"strings"
	"testing"
)

// contractPanic runs f and returns the *ContractError it panics with, or nil.
func contractPanic(t *testing.T, f func()) (err *ContractError) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ce, ok := r.(*ContractError)
		if !ok {
			t.Fatalf("wrong panic value: %#v", r)
		}
		err = ce
	}()
	f()
	return nil
}

func TestIDs(t *testing.T) {
	s := NewSession()
	a := s.Ref("a")
	b := s.Num(1, 1)
	app := s.OpApp("+", a, b)
	want := []ID{0, 1, 3}
	for i, n := range []*Term{a, b, app} {
		if n.ID() != want[i] {
			t.Errorf("node %d has id %d, want %d", i, n.ID(), want[i])
		}
		if s.Node(n.ID()) != n {
			t.Errorf("node %d is not found by its id", i)
		}
	}
	if s.Len() != 4 {
		t.Errorf("wrong node count: want 4, got %d", s.Len())
	}
	if s.Node(-1) != nil || s.Node(4) != nil {
		t.Error("out of range ids found nodes")
	}
	// Sessions do not share ids.
	if id := NewSession().Ref("x").ID(); id != 0 {
		t.Errorf("fresh session gave id %d", id)
	}
}

func TestClone(t *testing.T) {
	srcs := []string{
		"x",
		"2*x",
		"a - 2*b",
		"f(a+b, -c)*2^x",
		"{x | x in A}",
		`f("s", #0:1)`,
	}
	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			s := NewSession()
			r := s.MustParse(src)
			c := r.Clone()
			if c.Str() != r.Str() {
				t.Errorf("clone has string %q, want %q", c.Str(), r.Str())
			}
			if !c.Equal(r) || !c.EqStr(r) {
				t.Error("clone is not equal to the original")
			}
			if c.Parent() != nil {
				t.Error("clone has a parent")
			}
			if err := c.Verify(); err != nil {
				t.Errorf("clone is malformed: %v", err)
			}
			ids := make(map[ID]bool)
			for _, n := range All(r) {
				ids[n.ID()] = true
			}
			for _, n := range All(c) {
				if ids[n.ID()] {
					t.Errorf("clone reuses id %d", n.ID())
				}
			}
		})
	}
}

func TestPathInvariant(t *testing.T) {
	s := NewSession()
	r := s.MustParse("f(a+b, -c)*2^x + (g)(y, [1, 2])")
	for _, n := range All(r) {
		p := n.Path()
		got, err := p.Find(r)
		if err != nil {
			t.Errorf("path %v of node %d: %v", p, n.ID(), err)
			continue
		}
		if got != n {
			t.Errorf("path %v of node %d found node %d", p, n.ID(), got.ID())
		}
		if n.Root() != r {
			t.Errorf("node %d has the wrong root", n.ID())
		}
	}
	if p := r.Path(); len(p) != 0 {
		t.Errorf("root has nonempty path %v", p)
	}
	for _, p := range []Path{{5}, {0, 0, 0, 0, 0, 0}, {-1, 0}} {
		_, err := p.Find(r)
		var pe *PathError
		if !errors.As(err, &pe) {
			t.Errorf("path %v gave %v, not a path error", p, err)
		}
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b string
		eq   bool
	}{
		{"x", "x", true},
		{"x", "y", false},
		{"x", "2*x", false},
		{"1 + 2", "1+2", true},
		{"1 + 2", "2 + 1", false},
		{"0.5", "0.50", false},
		{"f(x)", "f(x, y)", false},
		{"f(x)", "g(x)", false},
		{`"a"`, `"a"`, true},
		{"#0:1", "#0:1", true},
		{"#0:1", "#0", false},
	}
	for _, c := range cases {
		t.Run(c.a+"~"+c.b, func(t *testing.T) {
			s := NewSession()
			a, b := s.MustParse(c.a), s.MustParse(c.b)
			if a.Equal(b) != c.eq {
				t.Errorf("wrong equality: want %t", c.eq)
			}
		})
	}
}

func TestMutation(t *testing.T) {
	t.Run("insert", func(t *testing.T) {
		s := NewSession()
		r := s.MustParse("f(a, c)")
		r.InsertArg(1, s.Ref("b"))
		r.InsertArgs(0, s.Ref("y"), s.Ref("z"))
		if got := r.Str(); got != "f(y, z, a, b, c)" {
			t.Errorf("wrong result: %q", got)
		}
		if err := r.Verify(); err != nil {
			t.Error(err)
		}
	})
	t.Run("add", func(t *testing.T) {
		s := NewSession()
		r := s.MustParse("a + b")
		r.AddArg(s.Num(-3, 1))
		r.AddArg(s.Ref("c"))
		if got := r.Str(); got != "a + b -3 + c" {
			t.Errorf("wrong result: %q", got)
		}
	})
	t.Run("remove", func(t *testing.T) {
		s := NewSession()
		r := s.MustParse("f(a, b, c)")
		b := r.Arg(1)
		b.RemoveArg()
		if got := r.Str(); got != "f(a, c)" {
			t.Errorf("wrong result: %q", got)
		}
		if b.Parent() != nil {
			t.Error("removed node still has a parent")
		}
	})
	t.Run("replace", func(t *testing.T) {
		s := NewSession()
		r := s.MustParse("a + b")
		b := r.Arg(1)
		b.Replace(s.MustParse("c * d"))
		if got := r.Str(); got != "a + c * d" {
			t.Errorf("wrong result: %q", got)
		}
		if b.Parent() != nil {
			t.Error("replaced node still has a parent")
		}
		if err := r.Verify(); err != nil {
			t.Error(err)
		}
	})
	t.Run("replace-functor", func(t *testing.T) {
		s := NewSession()
		r := s.MustParse("f(x)")
		r.Fnc().Replace(s.Ref("g"))
		if got := r.Str(); got != "g(x)" {
			t.Errorf("wrong result: %q", got)
		}
	})
	t.Run("set", func(t *testing.T) {
		s := NewSession()
		r := s.MustParse("f(a, b)")
		r.SetArg(0, s.Num(7, 1))
		if got := r.Str(); got != "f(7, b)" {
			t.Errorf("wrong result: %q", got)
		}
	})
	t.Run("index", func(t *testing.T) {
		s := NewSession()
		r := s.MustParse("f(a, b)")
		if i := r.Fnc().Index(); i != -1 {
			t.Errorf("functor has index %d", i)
		}
		if i := r.Arg(1).Index(); i != 1 {
			t.Errorf("second argument has index %d", i)
		}
	})
}

func TestContractViolations(t *testing.T) {
	cases := []struct {
		name string
		f    func(s *Session)
	}{
		{"add-to-ref", func(s *Session) { s.Ref("x").AddArg(s.Ref("y")) }},
		{"other-session", func(s *Session) { s.OpApp("+").AddArg(NewSession().Ref("x")) }},
		{"remove-functor", func(s *Session) { s.MustParse("f(x)").Fnc().RemoveArg() }},
		{"remove-root", func(s *Session) { s.Ref("x").RemoveArg() }},
		{"replace-root", func(s *Session) { s.Ref("x").Replace(s.Ref("y")) }},
		{"zero-denominator", func(s *Session) { s.Num(1, 0) }},
		{"fractional-coefficient", func(s *Session) {
			x := s.Ref("x")
			x.Coef = R(1, 2)
			_ = x.Str()
		}},
		{"short-division", func(s *Session) { _ = s.OpApp("/", s.Ref("x")).Str() }},
		{"path-tex", func(s *Session) { _ = s.MustParse("#0").Tex() }},
		{"path-strid", func(s *Session) { _ = s.MustParse("#0").StrID() }},
		{"path-flow", func(s *Session) { NewFlow(s.MustParse("f(#0)")) }},
		{"bad-sqrt", func(s *Session) { _ = s.MustParse("sqrt(a, b)").Tex() }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSession()
			err := contractPanic(t, func() { c.f(s) })
			if err == nil {
				t.Fatal("no panic")
			}
			if !strings.HasPrefix(err.Error(), "mathcast: ") {
				t.Errorf("unprefixed message %q", err.Error())
			}
		})
	}
}

func TestCloneRoot(t *testing.T) {
	s := NewSession()
	r := s.MustParse("f(a, g(b))")
	b := r.Arg(1).Arg(0)
	root, self := b.CloneRoot()
	if self == b || root == r {
		t.Fatal("clone shares nodes with the original")
	}
	if self.Name() != "b" {
		t.Errorf("wrong node: %q", self.Str())
	}
	if !self.Path().Equal(b.Path()) {
		t.Errorf("clone is at %v, want %v", self.Path(), b.Path())
	}
	if self.Root() != root {
		t.Error("clone is not under the new root")
	}
	if root.Str() != r.Str() {
		t.Errorf("new root is %q, want %q", root.Str(), r.Str())
	}
}

func TestSearch(t *testing.T) {
	s := NewSession()
	r := s.MustParse("f(x, g(x), y^2)")
	x, y, z := s.Ref("x"), s.Ref("y"), s.Ref("z")
	if got := SubTerms(r, x); len(got) != 2 {
		t.Errorf("wrong number of matches for x: %d", len(got))
	}
	if got := SubTerms(r, z); len(got) != 0 {
		t.Errorf("matches for z: %d", len(got))
	}
	if !r.Depends(y) {
		t.Error("no dependency on y")
	}
	if r.Depends(z) {
		t.Error("dependency on z")
	}
	m := TermMap(r)
	if m["y ^ 2"] != r.Arg(2) {
		t.Errorf("wrong term for y ^ 2: %v", m["y ^ 2"])
	}
	if m["f"] != r.Fnc() {
		t.Errorf("wrong term for f: %v", m["f"])
	}
	if n := len(All(r)); n != 10 {
		t.Errorf("wrong node count: want 10, got %d", n)
	}
}

func TestPredicates(t *testing.T) {
	s := NewSession()
	cases := []struct {
		src  string
		pred func(*Term) bool
		want bool
	}{
		{"a + b", (*Term).IsAdd, true},
		{"a * b", (*Term).IsMul, true},
		{"a / b", (*Term).IsDiv, true},
		{"a . b", (*Term).IsDot, true},
		{"[a]", (*Term).IsList, true},
		{"a = b", (*Term).IsEq, true},
		{"a == b", (*Term).IsEq, true},
		{"a != b", (*Term).IsEq, false},
		{"sqrt(a)", (*Term).IsSqrt, true},
		{"pdiff(f, x)", (*Term).IsDiff, true},
		{"lim(f, x, 0)", (*Term).IsLim, true},
		{"0", (*Term).IsZero, true},
		{"1", (*Term).IsOne, true},
		{"x", (*Term).IsOne, false},
		{"e", (*Term).IsE, true},
		{"i", (*Term).IsI, true},
		{"f", (*Term).IsNamedFnc, true},
		{"f", (*Term).IsOprFnc, false},
		{"a + b", (*Term).IsOperator, true},
		{"f(a)", (*Term).IsOperator, false},
	}
	for _, c := range cases {
		if got := c.pred(s.MustParse(c.src)); got != c.want {
			t.Errorf("wrong predicate result on %q: want %t, got %t", c.src, c.want, got)
		}
	}
	if !s.Op("+").IsOprFnc() {
		t.Error("+ is not an operator functor")
	}
}

func TestColors(t *testing.T) {
	x := NewSession().Ref("x")
	if x.Colored() {
		t.Error("new node is colored")
	}
	x.Red()
	if x.Color != "red" || !x.Colored() {
		t.Errorf("wrong color after Red: %q", x.Color)
	}
	x.Blue()
	if x.Color != "blue" {
		t.Errorf("wrong color after Blue: %q", x.Color)
	}
	x.Uncolor()
	if x.Colored() {
		t.Error("node is colored after Uncolor")
	}
}

func TestDump(t *testing.T) {
	var b strings.Builder
	NewSession().MustParse("a+1").Dump(&b)
	want := "2\n\t1:+\n\t0:a\n\t3:1\n"
	if got := b.String(); got != want {
		t.Errorf("wrong dump:\nwant %q\ngot  %q", want, got)
	}
	b.Reset()
	NewSession().MustParse("-x").Dump(&b)
	if got := b.String(); got != "0:-1 x\n" {
		t.Errorf("wrong dump of coefficient: %q", got)
	}
}

func TestVariables(t *testing.T) {
	s := NewSession()
	a, err := s.Declare("a", s.MustParse("1"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Declare("b", s.MustParse("a + a*2 + pi"))
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Deps) != 1 || b.Deps[0] != a {
		t.Errorf("wrong dependencies of b: %v", b.Deps)
	}
	if _, err := s.Declare("n", s.MustParse("n + f(a)")); err != nil {
		t.Errorf("self reference rejected: %v", err)
	}
	_, err = s.Declare("c", s.MustParse("d + 1"))
	var ne *NameError
	if !errors.As(err, &ne) || ne.Name != "d" {
		t.Errorf("wrong error for undeclared dependency: %v", err)
	}
	if s.Lookup("c") != nil {
		t.Error("failed declaration was registered")
	}
	if len(s.Variables()) != 3 {
		t.Errorf("wrong number of variables: %d", len(s.Variables()))
	}

	a2, err := s.Declare("a", s.MustParse("2"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Lookup("a") != a2 {
		t.Error("redeclaration does not take precedence")
	}

	r := s.MustParse("a * b")
	if err := s.Resolve(r); err != nil {
		t.Fatal(err)
	}
	if r.Arg(0).Var() != a2 || r.Arg(1).Var() != b {
		t.Error("references resolved to the wrong variables")
	}
	err = s.Resolve(s.MustParse("a + q"))
	if !errors.As(err, &ne) || ne.Name != "q" {
		t.Errorf("wrong error for undeclared reference: %v", err)
	}
}

func TestBuiltins(t *testing.T) {
	s := NewSession(Builtins("k"))
	if _, err := s.Declare("x", s.MustParse("k + 1")); err != nil {
		t.Errorf("builtin rejected: %v", err)
	}
	_, err := s.Declare("y", s.MustParse("pi"))
	var ne *NameError
	if !errors.As(err, &ne) || ne.Name != "pi" {
		t.Errorf("pi accepted without being built in: %v", err)
	}
	if !NewSession().IsBuiltin("infty") {
		t.Error("infty is not built in by default")
	}
}
