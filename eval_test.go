package mathcast_test

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"testing"

	"github.com/zephyrtronium/mathcast"
)

func TestEval(t *testing.T) {
	type vv struct {
		n string
		v float64
	}
	type vc struct {
		vars []vv
		r    float64
	}
	cases := []struct {
		name string
		src  string
		r    []vc
	}{
		{"num", "1", []vc{{nil, 1}}},
		{"float", "1.5 + 0.25", []vc{{nil, 1.75}}},
		{"ident", "x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
			{[]vv{{"x", 6}}, 6},
		}},
		{"neg", "-x", []vc{
			{[]vv{{"x", 4}}, -4},
			{[]vv{{"x", 5}}, -5},
			{[]vv{{"x", 6}}, -6},
		}},
		{"coef", "3*x", []vc{
			{[]vv{{"x", 2}}, 6},
			{[]vv{{"x", -1}}, -3},
		}},
		{"add", "4+5+6", []vc{{nil, 4 + 5 + 6}}},
		{"sub", "4-5-6", []vc{{nil, 4 - 5 - 6}}},
		{"mul", "4*5*6", []vc{{nil, 4 * 5 * 6}}},
		{"div", "4/5/6", []vc{{nil, 4.0 / 5.0 / 6.0}}},
		{"pow", "4^3^2", []vc{{nil, 262144}}},
		{"pow-neg-base", "(-2)^3", []vc{{nil, -8}}},
		{"pow-neg-even", "(-2)^2", []vc{{nil, 4}}},
		{"neg-pow", "-2^2", []vc{{nil, -4}}},
		{"pow-zero", "x^0", []vc{{[]vv{{"x", 5}}, 1}}},
		{"pow-one", "x^1", []vc{{[]vv{{"x", 3}}, 3}}},
		{"pow-neg-zero-base", "(-x)^0.5", []vc{{[]vv{{"x", 0}}, 0}}},
		{"pow-inf-neg", "infty^(-1)", []vc{{nil, 0}}},
		{"vars", "x*y - x", []vc{
			{[]vv{{"x", 2}, {"y", 3}}, 4},
			{[]vv{{"x", 0}, {"y", 3}}, 0},
		}},
		{"pi", "pi", []vc{{nil, math.Pi}}},
		{"e", "e", []vc{{nil, math.E}}},
		{"infty", "infty", []vc{{nil, math.Inf(1)}}},
		{"exp", "exp(1)", []vc{{nil, math.E}}},
		{"sqrt", "sqrt(16)", []vc{{nil, 4}}},
		{"abs", "abs(-3)", []vc{{nil, 3}}},
		{"log", "log(1000)", []vc{{nil, 3}}},
		{"log-base", "log(8, 2)", []vc{{nil, 3}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := mathcast.NewSession()
			a, err := s.Parse(c.src)
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			for _, v := range c.r {
				opts := []mathcast.EvalOption{mathcast.Prec(64)}
				for _, x := range v.vars {
					opts = append(opts, mathcast.Var(x.n, big.NewFloat(x.v)))
				}
				r, err := s.Eval(a, opts...)
				if err != nil {
					t.Fatal("evaluation error:", err)
				}
				if f, _ := r.Float64(); f != v.r {
					t.Errorf("wrong result: want %g, got %g", v.r, r)
				}
			}
		})
	}
}

func TestEvalDeclared(t *testing.T) {
	s := mathcast.NewSession()
	if _, err := s.Declare("r", s.MustParse("2")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Declare("area", s.MustParse("r^2 + 1")); err != nil {
		t.Fatal(err)
	}
	a := s.MustParse("area * 2")
	r, err := s.Eval(a)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := r.Float64(); f != 10 {
		t.Errorf("wrong result: want 10, got %g", r)
	}
	// Bound values take precedence over declarations.
	r, err = s.Eval(a, mathcast.Var("r", big.NewFloat(3)))
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := r.Float64(); f != 20 {
		t.Errorf("wrong result with bound r: want 20, got %g", r)
	}
	// Resolved references use the variable they were bound to.
	if err := s.Resolve(a); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Declare("area", s.MustParse("0")); err != nil {
		t.Fatal(err)
	}
	r, err = s.Eval(a)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := r.Float64(); f != 10 {
		t.Errorf("wrong result after redeclaration: want 10, got %g", r)
	}
}

func TestEvalUndefNames(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    string
	}{
		{"x", "x", "x"},
		{"neg", "-x", "x"},
		{"add-lhs", "x+1", "x"},
		{"add-rhs", "1+x", "x"},
		{"mul-rhs", "2*x", "x"},
		{"div-rhs", "1/x", "x"},
		{"pow-lhs", "x^1", "x"},
		{"pow-rhs", "1^x", "x"},
		{"call", "exp(x)", "x"},
		{"func", "f(1)", "f"},
		{"arity", "exp(1, 2)", "exp"},
		{"relation", "a = b", "a"},
	}
	ure := regexp.MustCompile(`(?i)\bundefined\b`)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := mathcast.NewSession()
			a, err := s.Parse(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := s.Eval(a)
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %g", c.src, r)
			}
			var u *mathcast.NameError
			if !errors.As(err, &u) {
				t.Fatalf("error was %#v, not NameError", err)
			}
			if u.Name != c.r {
				t.Errorf("NameError on %q, want %q", u.Name, c.r)
			}
			if !ure.MatchString(err.Error()) {
				t.Errorf(`%q doesn't mention "undefined"`, err.Error())
			}
		})
	}
}

func TestEvalCycle(t *testing.T) {
	s := mathcast.NewSession()
	if _, err := s.Declare("n", s.MustParse("n + 1")); err != nil {
		t.Fatal(err)
	}
	_, err := s.Eval(s.MustParse("n"))
	var u *mathcast.NameError
	if !errors.As(err, &u) || u.Name != "n" {
		t.Errorf("wrong error for self-referential variable: %v", err)
	}
}

func TestEvalDomainError(t *testing.T) {
	cases := []struct {
		name string
		src  string
		fn   string
		arg  int
	}{
		{"sqrt", "sqrt(-1)", "sqrt", 1},
		{"ln", "ln(0)", "ln", 1},
		{"log", "log(-1)", "log", 1},
		{"log-base", "log(1, -1)", "log", 2},
		{"log-base-one", "log(8, 1)", "log", 2},
		{"div-zero", "0/0", "/", 2},
		{"div-inf", "infty/infty", "/", 2},
		{"pow-neg", "(-1)^0.5", "^", 1},
		{"pow-one-inf", "1^infty", "^", 2},
		{"add-inf", "infty - infty", "+", 2},
		{"mul-zero-inf", "0*infty", "*", 2},
		{"mul-inf-zero", "infty*0", "*", 2},
		{"log-inf", "log(infty, infty)", "log", 2},
	}
	re := regexp.MustCompile(`\boutside domain\b`)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := mathcast.NewSession()
			a, err := s.Parse(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := s.Eval(a)
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %g", c.src, r)
			}
			var de *mathcast.DomainError
			if !errors.As(err, &de) {
				t.Fatalf("%#v is not *mathcast.DomainError", err)
			}
			if de.Func != c.fn || de.Arg != c.arg {
				t.Errorf("wrong error: want %s argument %d, got %s argument %d", c.fn, c.arg, de.Func, de.Arg)
			}
			if !re.MatchString(err.Error()) {
				t.Errorf("%q doesn't mention the domain", err.Error())
			}
		})
	}
}

func TestEvalNonNumeric(t *testing.T) {
	for _, src := range []string{`"s"`, "#0", "(f+g)(x)"} {
		s := mathcast.NewSession()
		if r, err := s.Eval(s.MustParse(src)); err == nil {
			t.Errorf("evaluating %q gave %g with no error", src, r)
		}
	}
}

func TestEvalPrec(t *testing.T) {
	s := mathcast.NewSession()
	a := s.MustParse("1/3 + x")
	r, err := s.Eval(a, mathcast.Prec(200), mathcast.Var("x", new(big.Float)))
	if err != nil {
		t.Fatal(err)
	}
	if r.Prec() != 200 {
		t.Errorf("wrong precision: want 200, got %d", r.Prec())
	}
	r, err = s.Eval(s.MustParse("1"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Prec() != mathcast.DefaultPrec {
		t.Errorf("wrong default precision: want %d, got %d", mathcast.DefaultPrec, r.Prec())
	}
	defer func() {
		if recover() == nil {
			t.Error("zero precision accepted")
		}
	}()
	mathcast.Prec(0)
}

func BenchmarkEval(b *testing.B) {
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		s := mathcast.NewSession()
		a := s.MustParse("2+3+4")
		for i := 0; i < b.N; i++ {
			s.Eval(a)
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		s := mathcast.NewSession()
		a := s.MustParse("x+y+z")
		opts := []mathcast.EvalOption{
			mathcast.Var("x", big.NewFloat(2)),
			mathcast.Var("y", big.NewFloat(3)),
			mathcast.Var("z", big.NewFloat(4)),
		}
		for i := 0; i < b.N; i++ {
			s.Eval(a, opts...)
		}
	})
}

func Example() {
	s := mathcast.NewSession()
	a := s.MustParse("x^3/2 - x")
	b := s.MustParse("3*x^2/2 - 1")
	c := s.MustParse("3*x")
	fmt.Println(a.Str())

	for i := 0; i < 4; i++ {
		x := mathcast.Var("x", big.NewFloat(float64(i)))
		y, _ := s.Eval(a, x)
		yp, _ := s.Eval(b, x)
		ypp, _ := s.Eval(c, x)
		fmt.Printf("x = %d   y = %-4g  y' = %-4g  y'' = %g\n", i, y, yp, ypp)
	}

	// Output:
	// x ^ 3 / 2 - x
	// x = 0   y = 0     y' = -1    y'' = 0
	// x = 1   y = -0.5  y' = 0.5   y'' = 3
	// x = 2   y = 2     y' = 5     y'' = 6
	// x = 3   y = 10.5  y' = 12.5  y'' = 9
}
