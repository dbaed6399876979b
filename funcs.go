package mathcast

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function from reals to reals that Eval applies to the arguments
// of a named application. The function should set r to its result and should
// not use the value of r otherwise.
type Func interface {
	// Call evaluates the function on args, whose length is one for which
	// CanCall returned true. Call may modify the elements of args. r has the
	// evaluation precision.
	Call(args []*big.Float, r *big.Float) error

	// CanCall returns whether the function can be called with n arguments.
	CanCall(n int) bool
}

var globalfuncs = map[string]Func{
	"exp": Monadic(bigfloat.Exp),
	"ln": Monadic(func(out, in *big.Float) *big.Float {
		if in.Sign() <= 0 {
			panic(big.ErrNaN{})
		}
		return bigfloat.Log(out, in)
	}),
	"log": logfn{},
	"sqrt": Monadic(func(out, in *big.Float) *big.Float {
		if in.Sign() < 0 {
			panic(big.ErrNaN{})
		}
		return out.Sqrt(in)
	}),
	"abs": Monadic((*big.Float).Abs),

	// constants
	"pi": Niladic(bigfloat.Pi),
	"e": Niladic(func(out *big.Float) *big.Float {
		var one big.Float
		one.SetFloat64(1)
		return bigfloat.Exp(out, &one)
	}),
	"infty": Niladic(func(out *big.Float) *big.Float {
		return out.SetInf(false)
	}),
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(args []*big.Float, r *big.Float) (err error) {
	in := args[0]
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = r.(error) // panic if not error
		if errors.As(err, &big.ErrNaN{}) {
			err = &DomainError{X: in, Arg: 1}
			return
		}
		panic(err)
	}()
	m.f(r, in)
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f must set out to its
// result, to the precision of out; its return value is always ignored. If f
// is called on an argument outside f's domain, it should panic with an error
// of type big.ErrNaN, or that unwraps to it.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(args []*big.Float, r *big.Float) (err error) {
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. Unlike Monadic, the wrapped function is expected
// never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

// logfn is log(x) in base 10 or log(x, b) in base b.
type logfn struct{}

func (logfn) Call(args []*big.Float, r *big.Float) error {
	for i, x := range args {
		if x.Sign() <= 0 {
			return &DomainError{X: x, Arg: i + 1}
		}
	}
	base := new(big.Float).SetPrec(r.Prec()).SetFloat64(10)
	if len(args) == 2 {
		base.Set(args[1])
	}
	bigfloat.Log(r, args[0])
	bigfloat.Log(base, base)
	if base.Sign() == 0 || r.IsInf() && base.IsInf() {
		return &DomainError{X: args[1], Arg: 2}
	}
	r.Quo(r, base)
	return nil
}

func (logfn) CanCall(n int) bool {
	return n == 1 || n == 2
}

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}
