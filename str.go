package mathcast

import (
	"strconv"
	"strings"
)

// Str returns the canonical string of t. Parsing the canonical string of a
// parsed tree gives a tree with the same canonical string. Panics with a
// *ContractError if the tree under t is malformed or carries a fractional
// coefficient on anything but a constant.
func (t *Term) Str() string {
	s := t.str()
	if t.powOperand() || t.negLeader() {
		return "(" + s + ")"
	}
	return s
}

func (t *Term) str() string {
	switch t.kind {
	case KindConst:
		if d, ok := t.Coef.Decimal(); ok {
			return t.signed(d)
		}
		if t.Coef.Den != 1 && t.Coef.Sign() < 0 {
			return "- " + t.Coef.Abs().String()
		}
		return t.signed(t.Coef.String())
	case KindRef:
		return t.signed(t.coefStr(t.name, false))
	case KindStr:
		return t.signed(t.coefStr(`"`+t.text+`"`, false))
	case KindPath:
		return t.signed(t.coefStr(t.indexes.String(), false))
	case KindApp:
		text, grouped := t.appStr()
		return t.signed(t.coefStr(text, grouped))
	default:
		panic(&ContractError{Op: "str", Msg: "invalid node kind " + t.kind.String()})
	}
}

// powOperand reports whether t is an operand of a power that needs
// parentheses to keep its sign or coefficient attached.
func (t *Term) powOperand() bool {
	p := t.Parent()
	if p == nil || !p.IsApp("^") || p.fnc == t.id {
		return false
	}
	if t.kind == KindConst {
		return t.Coef.Sign() < 0
	}
	return !t.Coef.Value(1)
}

// negLeader reports whether t is a negative constant leading a product or
// quotient, where its sign would otherwise read as a sign on the whole
// application.
func (t *Term) negLeader() bool {
	if t.kind != KindConst || t.Coef.Sign() >= 0 {
		return false
	}
	p := t.Parent()
	if p == nil || p.fnc == t.id || len(p.args) == 0 || p.args[0] != t.id {
		return false
	}
	return p.IsMul() || p.IsDiv() || p.IsApp("%")
}

// String returns the canonical string of t.
func (t *Term) String() string {
	return t.Str()
}

// coefStr prefixes text with the coefficient of t. grouped reports whether
// text is already parenthesized.
func (t *Term) coefStr(text string, grouped bool) string {
	c := t.Coef
	if c.Value(1) {
		return text
	}
	if t.IsAdd() && !grouped {
		text = "(" + text + ")"
	}
	switch {
	case c.Value(-1):
		return "- " + text
	case c.Den == 1:
		return strconv.FormatInt(c.Num, 10) + " * " + text
	}
	panic(&ContractError{Op: "str", Msg: "fractional coefficient " + c.String() + " on " + t.kind.String()})
}

// signed adds a plus sign to text when t is a non-negative term after the
// first in a sum.
func (t *Term) signed(text string) string {
	if t.inSum() && t.Coef.Sign() >= 0 {
		return "+ " + text
	}
	return text
}

// inSum reports whether t is an argument other than the first of a sum.
func (t *Term) inSum() bool {
	p := t.Parent()
	if p == nil || !p.IsAdd() || p.fnc == t.id {
		return false
	}
	return p.args[0] != t.id
}

func (t *Term) appStr() (text string, grouped bool) {
	args := make([]string, len(t.args))
	for i, a := range t.Args() {
		args[i] = a.Str()
	}
	fnc := t.Fnc()
	name := t.FncName()
	switch {
	case fnc.kind == KindApp:
		return "(" + fnc.Str() + ")(" + strings.Join(args, ", ") + ")", false
	case fnc.kind != KindRef:
		panic(&ContractError{Op: "str", Msg: "functor is a " + fnc.kind.String()})
	case isLetterOrAt(name):
		return name + "(" + strings.Join(args, ", ") + ")", false
	}
	switch name {
	case "+":
		switch len(args) {
		case 0:
			return "+[]", false
		case 1:
			return "+[" + args[0] + "]", false
		}
		text = strings.Join(args, " ")
	case "/":
		if len(args) < 2 {
			panic(&ContractError{Op: "str", Msg: "division with " + strconv.Itoa(len(args)) + " arguments"})
		}
		text = strings.Join(args, " / ")
	case ",":
		return strings.Join(args, ", "), false
	case "[]":
		return "[" + strings.Join(args, ", ") + "]", false
	case "{|}":
		if len(args) != 2 {
			panic(&ContractError{Op: "str", Msg: "set builder with " + strconv.Itoa(len(args)) + " arguments"})
		}
		return "{ " + args[0] + " | " + args[1] + " }", false
	default:
		if len(args) == 1 {
			text = name + " " + args[0]
		} else {
			text = strings.Join(args, " "+name+" ")
		}
	}
	if p := t.Parent(); p != nil && t.IsOperator() && p.IsOperator() && p.Precedence() <= t.Precedence() {
		return "(" + text + ")", true
	}
	return text, false
}

// StrID returns a structural key for t. Operator applications are fully
// parenthesized and coefficients other than 1 are always written, so two
// nodes have the same key exactly when they have the same shape. Panics with
// a *ContractError on path literals.
func (t *Term) StrID() string {
	var s string
	switch t.kind {
	case KindConst:
		return t.Coef.String()
	case KindRef:
		s = t.name
	case KindStr:
		return `"` + t.text + `"`
	case KindPath:
		panic(&ContractError{Op: "strid", Msg: "path literal has no structural key"})
	case KindApp:
		args := make([]string, len(t.args))
		for i, a := range t.Args() {
			args[i] = a.StrID()
		}
		fnc := t.Fnc()
		switch {
		case fnc.kind == KindApp:
			s = "(" + fnc.StrID() + ")(" + strings.Join(args, ", ") + ")"
		case fnc.IsOprFnc():
			s = "(" + strings.Join(args, " "+fnc.name+" ") + ")"
		default:
			s = fnc.name + "(" + strings.Join(args, ", ") + ")"
		}
	default:
		panic(&ContractError{Op: "strid", Msg: "invalid node kind " + t.kind.String()})
	}
	if t.Coef.Is(1, 1) {
		return s
	}
	return t.Coef.String() + " " + s
}
