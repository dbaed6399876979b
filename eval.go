package mathcast

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Var binds a name to a numeric value for one evaluation. Bound values take
// precedence over declared variables.
func Var(name string, val *big.Float) EvalOption {
	return varopt{name, val}
}

type varopt struct {
	name string
	val  *big.Float
}

func (o varopt) evalOption(c *evalctx) {
	if c.names == nil {
		c.names = make(map[string]*big.Float)
	}
	c.names[o.name] = o.val
}

// WithFunc makes a function available to one evaluation under a name,
// replacing any default function with that name. A nil f removes the name.
func WithFunc(name string, f Func) EvalOption {
	return funcopt{name, f}
}

type funcopt struct {
	name string
	fn   Func
}

func (o funcopt) evalOption(c *evalctx) {
	if c.funcs == nil {
		c.funcs = make(map[string]Func, len(globalfuncs)+1)
		for k, v := range globalfuncs {
			c.funcs[k] = v
		}
	}
	c.funcs[o.name] = o.fn
}

// evaluator holds the state of one evaluation.
type evaluator struct {
	evalctx
	stack []*big.Float
	// active holds the variables being evaluated, to reject cycles.
	active map[*Variable]bool
}

// Eval computes the value of t. References evaluate to values bound with Var,
// then to declared variables, then to the builtin constants pi, e and infty.
// Arithmetic operators evaluate arithmetically, and named applications call
// the function of that name: exp, ln, log, sqrt, abs, or one given with
// WithFunc. Every node's value is scaled by its coefficient.
//
// A name with no value gives a *NameError. An argument outside a function's
// domain gives a *DomainError.
func (s *Session) Eval(t *Term, opts ...EvalOption) (*big.Float, error) {
	ev := evaluator{
		evalctx: evalctx{prec: DefaultPrec},
		active:  make(map[*Variable]bool),
	}
	for _, opt := range opts {
		opt.evalOption(&ev.evalctx)
	}
	if ev.funcs == nil {
		ev.funcs = globalfuncs
	}
	if err := ev.eval(t); err != nil {
		return nil, err
	}
	if len(ev.stack) != 1 {
		panic("mathcast: inconsistent stack: " + strconv.Itoa(len(ev.stack)) + " items")
	}
	return ev.stack[0], nil
}

// push adds a new value to the stack.
func (ev *evaluator) push() *big.Float {
	r := new(big.Float).SetPrec(ev.prec)
	ev.stack = append(ev.stack, r)
	return r
}

// pop removes the top from the stack and returns it.
func (ev *evaluator) pop() *big.Float {
	r := ev.stack[len(ev.stack)-1]
	ev.stack = ev.stack[:len(ev.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ev *evaluator) top() *big.Float {
	return ev.stack[len(ev.stack)-1]
}

// eval pushes the node's value to the stack.
func (ev *evaluator) eval(t *Term) error {
	switch t.kind {
	case KindConst:
		ev.push().SetRat(t.Coef.Rat())
		return nil
	case KindRef:
		if err := ev.ref(t); err != nil {
			return err
		}
	case KindApp:
		if err := ev.app(t); err != nil {
			return err
		}
	case KindStr, KindPath:
		return errors.New("mathcast: cannot evaluate " + t.kind.String() + " " + t.Str())
	default:
		panic("mathcast: invalid node kind " + t.kind.String())
	}
	if !t.Coef.Value(1) {
		v := ev.top()
		if v.IsInf() && t.Coef.Sign() == 0 {
			return &DomainError{X: v, Arg: 2, Func: "*"}
		}
		c := new(big.Float).SetPrec(ev.prec).SetRat(t.Coef.Rat())
		v.Mul(v, c)
	}
	return nil
}

func (ev *evaluator) ref(t *Term) error {
	if v := ev.names[t.name]; v != nil {
		ev.push().Set(v)
		return nil
	}
	v := t.v
	if v == nil {
		v = t.s.Lookup(t.name)
	}
	if v != nil {
		if ev.active[v] {
			return &NameError{Name: t.name}
		}
		ev.active[v] = true
		defer delete(ev.active, v)
		return ev.eval(v.Expr)
	}
	if f := ev.funcs[t.name]; f != nil && f.CanCall(0) {
		return f.Call(nil, ev.push())
	}
	return &NameError{Name: t.name}
}

func (ev *evaluator) app(t *Term) error {
	name := t.FncName()
	if name == "" {
		return errors.New("mathcast: cannot evaluate application of " + t.Fnc().Str())
	}
	k := len(ev.stack)
	for _, a := range t.Args() {
		if err := ev.eval(a); err != nil {
			return err
		}
	}
	args := ev.stack[k:len(ev.stack):len(ev.stack)]
	r := new(big.Float).SetPrec(ev.prec)
	switch name {
	case "+":
		for i, a := range args {
			// inf + -inf
			if r.IsInf() && a.IsInf() && r.Signbit() != a.Signbit() {
				return &DomainError{X: a, Arg: i + 1, Func: "+"}
			}
			r.Add(r, a)
		}
	case "*":
		r.SetInt64(1)
		for i, a := range args {
			// 0 * inf
			if r.Sign() == 0 && a.IsInf() || r.IsInf() && a.Sign() == 0 {
				return &DomainError{X: a, Arg: i + 1, Func: "*"}
			}
			r.Mul(r, a)
		}
	case "/":
		if len(args) < 2 {
			return &NameError{Name: name}
		}
		r.Set(args[0])
		for i, a := range args[1:] {
			// Guard against invalid divisions, 0/0 or inf/inf.
			if r.Sign() == 0 && a.Sign() == 0 || r.IsInf() && a.IsInf() {
				return &DomainError{X: a, Arg: i + 2, Func: "/"}
			}
			r.Quo(r, a)
		}
	case "^":
		if len(args) != 2 {
			return &NameError{Name: name}
		}
		if err := pow(r, args[0], args[1]); err != nil {
			return err
		}
	default:
		f := ev.funcs[name]
		if f == nil || !f.CanCall(len(args)) {
			return &NameError{Name: name}
		}
		if err := f.Call(args, r); err != nil {
			var de *DomainError
			if errors.As(err, &de) && de.Func == "" {
				de.Func = name
			}
			return err
		}
	}
	ev.stack = append(ev.stack[:k], r)
	return nil
}

// pow sets r to x**y. A negative base is allowed only with an integer
// exponent.
func pow(r, x, y *big.Float) (err error) {
	neg := false
	switch {
	case x.Signbit() && x.Sign() == 0:
		x = new(big.Float).SetPrec(x.Prec())
	case x.Signbit():
		if !y.IsInt() {
			return &DomainError{X: x, Arg: 1, Func: "^"}
		}
		n, _ := y.Int(nil)
		neg = n.Bit(0) == 1
		x = new(big.Float).Abs(x)
	}
	defer func() {
		e := recover()
		if e == nil {
			return
		}
		err = e.(error) // panic if not error
		if errors.As(err, &big.ErrNaN{}) {
			// 1 ** inf
			err = &DomainError{X: y, Arg: 2, Func: "^"}
			return
		}
		panic(err)
	}()
	if x.IsInf() && y.Sign() < 0 {
		r.SetInt64(0)
	} else {
		// Pow returns a new value for some special cases instead of setting r.
		r.Set(bigfloat.Pow(r, x, y))
	}
	if neg {
		r.Neg(r)
	}
	return nil
}
