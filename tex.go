package mathcast

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var greeks = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true,
	"epsilon": true, "varepsilon": true, "zeta": true, "eta": true,
	"theta": true, "vartheta": true, "iota": true, "kappa": true,
	"lambda": true, "mu": true, "nu": true, "xi": true, "pi": true,
	"varpi": true, "rho": true, "varrho": true, "sigma": true,
	"varsigma": true, "tau": true, "upsilon": true, "phi": true,
	"varphi": true, "chi": true, "psi": true, "omega": true,
}

// IsGreek reports whether name is the name of a Greek letter, either case.
func IsGreek(name string) bool {
	if greeks[name] {
		return true
	}
	r, n := utf8.DecodeRuneInString(name)
	if n == 0 {
		return false
	}
	return greeks[string(unicode.ToLower(r))+name[n:]]
}

var texNames = map[string]string{
	"==":     "=",
	"!=":     `\ne`,
	"<":      `\lt`,
	">":      `\gt`,
	"<=":     `\le`,
	">=":     `\ge`,
	"*":      `\cdot`,
	"%":      `\bmod`,
	"=>":     `\implies`,
	"&&":     `\land`,
	"||":     `\lor`,
	"iff":    `\iff`,
	"hbar":   `\hbar`,
	"nabla":  `\nabla`,
	"nabla2": `\nabla^2`,
	"infty":  `\infty`,
	"sin":    `\sin`,
	"cos":    `\cos`,
	"tan":    `\tan`,
	"in":     `\in`,
	"notin":  `\notin`,
	"subset": `\subset`,
	"cup":    `\cup`,
	"cap":    `\cap`,
}

// TexName translates an operator or function name to LaTeX. Names with no
// translation are returned unchanged.
func TexName(name string) string {
	if s, ok := texNames[name]; ok {
		return s
	}
	if IsGreek(name) {
		return `\` + name
	}
	return name
}

// Macros returns the custom macros that LaTeX from this package may use, for
// configuring a renderer.
func Macros() map[string]string {
	return map[string]string{
		`\dif`:   `\frac{d #1}{d #2}`,
		`\pdiff`: `\frac{\partial #1}{\partial #2}`,
		`\pddif`: `\frac{\partial^2 #1}{\partial {#2}^2}`,
		`\b`:     `\boldsymbol{#1}`,
	}
}

// Tex returns the LaTeX form of t. Panics with a *ContractError if the tree
// under t is malformed or contains a path literal.
func (t *Term) Tex(opts ...TexOption) string {
	var c texctx
	for _, opt := range opts {
		opt.texOption(&c)
	}
	return t.tex(&c)
}

func (t *Term) tex(c *texctx) string {
	var val string
	switch t.kind {
	case KindConst:
		val = t.Coef.Tex()
	case KindRef:
		val = t.texCoef(TexName(t.name), false)
	case KindStr:
		val = t.texCoef(`\text{`+t.text+`}`, false)
	case KindPath:
		panic(&ContractError{Op: "tex", Msg: "path literal " + t.indexes.String()})
	case KindApp:
		text, grouped := t.appTex(c)
		val = t.texCoef(text, grouped)
	default:
		panic(&ContractError{Op: "tex", Msg: "invalid node kind " + t.kind.String()})
	}
	if t.inSum() && t.Coef.Sign() >= 0 {
		val = "+ " + val
	}
	if t.Colored() {
		val = `{\color{` + t.Color + `} ` + val + `}`
	} else if t.Canceled {
		val = `\cancel{` + val + `}`
	}
	if c.ids && t.kind != KindStr {
		val = `\htmlData{id=` + strconv.Itoa(int(t.id)) + `}{` + val + `}`
	}
	return val
}

func (t *Term) texCoef(text string, grouped bool) string {
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
		return strconv.FormatInt(c.Num, 10) + " " + text
	}
	panic(&ContractError{Op: "tex", Msg: "fractional coefficient " + c.String() + " on " + t.kind.String()})
}

func (t *Term) appTex(c *texctx) (string, bool) {
	args := make([]string, len(t.args))
	for i, a := range t.Args() {
		args[i] = a.tex(c)
	}
	text := t.appTexText(c, args)
	if p := t.Parent(); p != nil {
		switch {
		case (t.IsAdd() || t.IsMul()) && p.IsLim():
			return "(" + text + ")", true
		case t.IsOperator() && p.IsOperator() && !p.IsDiv():
			if p.IsApp("^") && len(p.args) > 1 && p.args[1] == t.id {
				break
			}
			if p.Precedence() <= t.Precedence() {
				return "(" + text + ")", true
			}
		}
	}
	return text, false
}

func (t *Term) appTexText(c *texctx, args []string) string {
	fnc := t.Fnc()
	name := t.FncName()
	switch {
	case fnc.kind == KindApp:
		return "(" + fnc.tex(c) + ")(" + strings.Join(args, ", ") + ")"
	case fnc.kind != KindRef:
		panic(&ContractError{Op: "tex", Msg: "functor is a " + fnc.kind.String()})
	}
	n := len(args)
	switch name {
	case "lim":
		switch n {
		case 1:
			return `\lim ` + args[0]
		case 3:
			return `\lim_{` + args[1] + ` \to ` + args[2] + `} ` + args[0]
		}
	case "sum":
		switch n {
		case 1:
			return `\sum ` + args[0]
		case 3:
			return `\sum_{` + args[1] + `}^{` + args[2] + `} ` + args[0]
		case 4:
			return `\sum_{` + args[1] + `=` + args[2] + `}^{` + args[3] + `} ` + args[0]
		}
	case "log":
		switch n {
		case 1:
			return `\log ` + args[0]
		case 2:
			return `\log_{` + args[1] + `} ` + args[0]
		}
	case "{|}":
		if n == 2 {
			return `\{ ` + args[0] + ` \mid ` + args[1] + ` \}`
		}
		panic(&ContractError{Op: "tex", Msg: "set builder with " + strconv.Itoa(n) + " arguments"})
	case "in", "notin", "subset":
		switch n {
		case 1:
			return TexName(name) + " " + args[0]
		case 2:
			return t.declTex(c, args[0]) + " " + TexName(name) + " " + args[1]
		}
	case "complement":
		if n == 1 {
			return `{` + args[0] + `}^{\complement}`
		}
	case "diff", "pdiff":
		if n != 2 && n != 3 {
			panic(&ContractError{Op: "tex", Msg: name + " with " + strconv.Itoa(n) + " arguments"})
		}
		d := "d"
		if name == "pdiff" {
			d = `\partial`
		}
		ord := ""
		if n == 3 {
			ord = `^{` + args[2] + `}`
		}
		if strings.Contains(args[0], `\frac`) {
			return `\frac{` + d + ord + `}{` + d + ` ` + args[1] + ord + `} (` + args[0] + `)`
		}
		return `\frac{` + d + ord + ` ` + args[0] + `}{` + d + ` ` + args[1] + ord + `}`
	case "sqrt":
		if n != 1 {
			panic(&ContractError{Op: "tex", Msg: "sqrt with " + strconv.Itoa(n) + " arguments"})
		}
		return `\sqrt{` + args[0] + `}`
	case "nth_root":
		if n == 2 {
			return `\sqrt[` + args[1] + `]{` + args[0] + `}`
		}
	case "abs":
		if n == 1 {
			return `\left| ` + args[0] + ` \right|`
		}
	case "cup", "cap", "iff":
		if n >= 2 {
			return strings.Join(args, " "+TexName(name)+" ")
		}
	case "sin", "cos":
		if n == 1 && t.Arg(0).kind != KindApp {
			return TexName(name) + " " + args[0]
		}
	case "+":
		switch n {
		case 0:
			return "+[]"
		case 1:
			return "+[" + args[0] + "]"
		}
		return strings.Join(args, " ")
	case "/":
		if n < 2 {
			panic(&ContractError{Op: "tex", Msg: "division with " + strconv.Itoa(n) + " arguments"})
		}
		s := args[0]
		for _, a := range args[1:] {
			s = `\frac{` + s + `}{` + a + `}`
		}
		return s
	case "^":
		if n != 2 {
			panic(&ContractError{Op: "tex", Msg: "power with " + strconv.Itoa(n) + " arguments"})
		}
		if b := t.Arg(0); isTrig(b) {
			return TexName(b.FncName()) + `^{` + args[1] + `} ` + b.Arg(0).tex(c)
		}
		return `{` + args[0] + `}^{` + args[1] + `}`
	case ",":
		return strings.Join(args, ", ")
	case "[]":
		return "[" + strings.Join(args, ", ") + "]"
	}
	if isLetterOrAt(name) {
		return TexName(name) + "(" + strings.Join(args, ", ") + ")"
	}
	if n == 1 {
		return TexName(name) + " " + args[0]
	}
	return strings.Join(args, " "+TexName(name)+" ")
}

// declTex renders the left side of a membership, spreading an identifier
// list.
func (t *Term) declTex(c *texctx, left string) string {
	ids := t.Arg(0)
	if !ids.IsApp(",") {
		return left
	}
	s := make([]string, ids.NumArgs())
	for i, a := range ids.Args() {
		s[i] = a.tex(c)
	}
	return strings.Join(s, " , ")
}

// isTrig reports whether t is an undecorated one-argument sin, cos, or tan
// application with unit coefficient, whose power can be written on the
// function name.
func isTrig(t *Term) bool {
	if t.kind != KindApp || len(t.args) != 1 || !t.Coef.Value(1) || t.Colored() || t.Canceled {
		return false
	}
	switch t.FncName() {
	case "sin", "cos", "tan":
		return true
	}
	return false
}
