package mathcast

import (
	"fmt"
	"io"
	"strconv"
)

// ID identifies a node within its Session. IDs increase in construction order
// and are never reused.
type ID int

// NoID is the parent of a root node.
const NoID ID = -1

// Kind is the variant of a Term.
type Kind int8

const (
	KindNone Kind = iota

	KindConst // rational literal; the value is the coefficient
	KindRef   // name of a variable, function, or operator
	KindStr   // string literal
	KindPath  // index path literal
	KindApp   // functor applied to arguments
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "ConstNum"
	case KindRef:
		return "RefVar"
	case KindStr:
		return "Str"
	case KindPath:
		return "Path"
	case KindApp:
		return "App"
	default:
		return "None"
	}
}

// Term is a node of an expression tree. Terms are owned by the Session that
// created them; children and parents are stored as IDs into the session's
// arena. A Term is not safe for concurrent use.
type Term struct {
	s      *Session
	id     ID
	kind   Kind
	parent ID

	// Coef multiplies the node's value. For a ConstNum it is the value.
	Coef Rational
	// Canceled renders the node struck out in LaTeX.
	Canceled bool
	// Color names a LaTeX color for the node, or is empty.
	Color string

	name    string    // KindRef
	text    string    // KindStr
	indexes Path      // KindPath
	fnc     ID        // KindApp
	args    []ID      // KindApp
	v       *Variable // KindRef, set by Resolve
}

// ID returns the node's identity.
func (t *Term) ID() ID { return t.id }

// Kind returns the node's variant.
func (t *Term) Kind() Kind { return t.kind }

// Session returns the session that owns the node.
func (t *Term) Session() *Session { return t.s }

// Parent returns the application that owns t, or nil if t is a root.
func (t *Term) Parent() *Term {
	if t.parent == NoID {
		return nil
	}
	return t.s.Node(t.parent)
}

// Fnc returns the functor of an application, or nil for other kinds.
func (t *Term) Fnc() *Term {
	if t.kind != KindApp {
		return nil
	}
	return t.s.Node(t.fnc)
}

// Args returns a copy of the argument list of an application.
func (t *Term) Args() []*Term {
	r := make([]*Term, len(t.args))
	for i, id := range t.args {
		r[i] = t.s.Node(id)
	}
	return r
}

// NumArgs returns the number of arguments of an application.
func (t *Term) NumArgs() int { return len(t.args) }

// Arg returns the i-th argument of an application.
func (t *Term) Arg(i int) *Term { return t.s.Node(t.args[i]) }

// Name returns the name of a RefVar.
func (t *Term) Name() string { return t.name }

// Text returns the payload of a Str.
func (t *Term) Text() string { return t.text }

// Indexes returns a copy of the indices of a Path literal.
func (t *Term) Indexes() Path { return append(Path(nil), t.indexes...) }

// Var returns the variable a RefVar was resolved to, if any.
func (t *Term) Var() *Variable { return t.v }

// FncName returns the name of an application's functor when the functor is a
// RefVar, or the empty string otherwise.
func (t *Term) FncName() string {
	if f := t.Fnc(); f != nil && f.kind == KindRef {
		return f.name
	}
	return ""
}

// IsApp reports whether t is an application of the named functor.
func (t *Term) IsApp(name string) bool {
	return t.kind == KindApp && t.FncName() == name
}

// Precedence returns the binding strength of an operator application, lower
// being tighter, or -1 if t is not an arithmetic operator application.
func (t *Term) Precedence() int {
	if t.kind != KindApp {
		return -1
	}
	switch t.FncName() {
	case "^":
		return 0
	case "/":
		return 1
	case "*":
		return 2
	case "+", "-":
		return 3
	}
	return -1
}

// IsOperator reports whether t is an application with a precedence.
func (t *Term) IsOperator() bool { return t.Precedence() != -1 }

// IsNamedFnc reports whether t is a RefVar whose name is a word.
func (t *Term) IsNamedFnc() bool { return t.kind == KindRef && isLetterOrAt(t.name) }

// IsOprFnc reports whether t is a RefVar whose name is a symbol.
func (t *Term) IsOprFnc() bool { return t.kind == KindRef && !isLetterOrAt(t.name) }

func (t *Term) IsEq() bool   { return t.IsApp("==") || t.IsApp("=") }
func (t *Term) IsList() bool { return t.IsApp("[]") }
func (t *Term) IsAdd() bool  { return t.IsApp("+") }
func (t *Term) IsMul() bool  { return t.IsApp("*") }
func (t *Term) IsDiv() bool  { return t.IsApp("/") }
func (t *Term) IsDot() bool  { return t.IsApp(".") }
func (t *Term) IsSqrt() bool { return t.IsApp("sqrt") }
func (t *Term) IsDiff() bool { return t.IsApp("diff") || t.IsApp("pdiff") }
func (t *Term) IsLim() bool  { return t.IsApp("lim") }
func (t *Term) IsZero() bool { return t.Coef.Num == 0 }
func (t *Term) IsOne() bool  { return t.IsValue(1) }
func (t *Term) IsE() bool    { return t.kind == KindRef && t.name == "e" }
func (t *Term) IsI() bool    { return t.kind == KindRef && t.name == "i" }

// IsValue reports whether t is a ConstNum with the value n.
func (t *Term) IsValue(n int64) bool {
	return t.kind == KindConst && t.Coef.Value(n)
}

// Depends reports whether any node under t has the same canonical string as
// ref.
func (t *Term) Depends(ref *Term) bool {
	s := ref.Str()
	for _, x := range All(t) {
		if x.Str() == s {
			return true
		}
	}
	return false
}

// Red, Blue, and Uncolor set the display color.
func (t *Term) Red()     { t.Color = "red" }
func (t *Term) Blue()    { t.Color = "blue" }
func (t *Term) Uncolor() { t.Color = "" }

// Colored reports whether t has a display color.
func (t *Term) Colored() bool { return t.Color != "" }

// adopt makes app the owner of c.
func (app *Term) adopt(c *Term) ID {
	if c.s != app.s {
		panic(&ContractError{Op: "adopt", Msg: "node from another session"})
	}
	c.parent = app.id
	return c.id
}

func (app *Term) mustApp(op string) {
	if app.kind != KindApp {
		panic(&ContractError{Op: op, Msg: "not an application: " + app.kind.String()})
	}
}

// AddArg appends c to the arguments of app.
func (app *Term) AddArg(c *Term) {
	app.mustApp("add arg")
	app.args = append(app.args, app.adopt(c))
}

// InsertArg inserts c at position i in the arguments of app.
func (app *Term) InsertArg(i int, c *Term) {
	app.mustApp("insert arg")
	app.args = append(app.args, NoID)
	copy(app.args[i+1:], app.args[i:])
	app.args[i] = app.adopt(c)
}

// InsertArgs inserts cs at position i in order.
func (app *Term) InsertArgs(i int, cs ...*Term) {
	for k := len(cs) - 1; k >= 0; k-- {
		app.InsertArg(i, cs[k])
	}
}

// SetArg replaces the i-th argument of app with c.
func (app *Term) SetArg(i int, c *Term) {
	app.mustApp("set arg")
	app.args[i] = app.adopt(c)
}

// Index returns the position of t in its parent: -1 for the functor, else the
// argument index. Panics if t is a root.
func (t *Term) Index() int {
	p := t.Parent()
	if p == nil {
		panic(&ContractError{Op: "index", Msg: "root has no index"})
	}
	if p.fnc == t.id {
		return -1
	}
	for i, id := range p.args {
		if id == t.id {
			return i
		}
	}
	panic(&ContractError{Op: "index", Msg: fmt.Sprintf("node %d not in parent %d", t.id, p.id)})
}

// RemoveArg removes t from the arguments of its parent. t becomes a root.
func (t *Term) RemoveArg() {
	p := t.Parent()
	i := t.Index()
	if i < 0 {
		panic(&ContractError{Op: "remove arg", Msg: "cannot remove a functor"})
	}
	p.args = append(p.args[:i], p.args[i+1:]...)
	t.parent = NoID
}

// Replace puts target in t's slot in its parent. t becomes a root.
func (t *Term) Replace(target *Term) {
	p := t.Parent()
	if p == nil {
		panic(&ContractError{Op: "replace", Msg: "root cannot be replaced"})
	}
	i := t.Index()
	if i < 0 {
		p.fnc = p.adopt(target)
	} else {
		p.args[i] = p.adopt(target)
	}
	t.parent = NoID
}

// setParents sets the parent of t to parent and relinks every descendant to
// its owning application.
func (t *Term) setParents(parent ID) {
	t.parent = parent
	if t.kind != KindApp {
		return
	}
	t.Fnc().setParents(t.id)
	for _, a := range t.Args() {
		a.setParents(t.id)
	}
}

// Detach makes t a root and relinks its subtree.
func (t *Term) Detach() {
	t.setParents(NoID)
}

// Verify checks that every functor and argument under t names its owning
// application as its parent.
func (t *Term) Verify() error {
	if t.kind != KindApp {
		return nil
	}
	if t.fnc == NoID {
		return fmt.Errorf("mathcast: application %d has no functor", t.id)
	}
	kids := append([]*Term{t.Fnc()}, t.Args()...)
	for _, c := range kids {
		if c.parent != t.id {
			return fmt.Errorf("mathcast: node %d has parent %d, want %d", c.id, c.parent, t.id)
		}
		if err := c.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether t and u are structurally equal, coefficients
// included.
func (t *Term) Equal(u *Term) bool {
	if t.kind != u.kind {
		return false
	}
	switch t.kind {
	case KindStr:
		return t.text == u.text
	case KindConst:
		return t.Coef.Eq(u.Coef)
	case KindRef:
		return t.Coef.Eq(u.Coef) && t.name == u.name
	case KindPath:
		return t.Coef.Eq(u.Coef) && t.indexes.Equal(u.indexes)
	case KindApp:
		if !t.Coef.Eq(u.Coef) || len(t.args) != len(u.args) || !t.Fnc().Equal(u.Fnc()) {
			return false
		}
		for i := range t.args {
			if !t.Arg(i).Equal(u.Arg(i)) {
				return false
			}
		}
		return true
	default:
		panic(&ContractError{Op: "equal", Msg: "invalid node kind " + t.kind.String()})
	}
}

// EqStr reports whether t and u have the same canonical string.
func (t *Term) EqStr(u *Term) bool {
	return t.Str() == u.Str()
}

// Clone deep-copies t into fresh nodes of the same session. The copy is a
// root.
func (t *Term) Clone() *Term {
	c := t.s.alloc(t.kind)
	c.Coef = t.Coef
	c.Canceled = t.Canceled
	c.Color = t.Color
	switch t.kind {
	case KindConst:
	case KindRef:
		c.name = t.name
		c.v = t.v
	case KindStr:
		c.text = t.text
	case KindPath:
		c.indexes = t.Indexes()
	case KindApp:
		c.fnc = c.adopt(t.Fnc().Clone())
		c.args = make([]ID, 0, len(t.args))
		for _, a := range t.Args() {
			c.args = append(c.args, c.adopt(a.Clone()))
		}
	default:
		panic(&ContractError{Op: "clone", Msg: "invalid node kind " + t.kind.String()})
	}
	return c
}

// Root returns the topmost ancestor of t.
func (t *Term) Root() *Term {
	for t.parent != NoID {
		t = t.Parent()
	}
	return t
}

// Path returns the path from t's root to t.
func (t *Term) Path() Path {
	var p Path
	for t.parent != NoID {
		p = append(p, t.Index())
		t = t.Parent()
	}
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// CloneRoot clones the whole tree containing t and returns the new root along
// with the node at t's position in it.
func (t *Term) CloneRoot() (root, self *Term) {
	path := t.Path()
	root = t.Root().Clone()
	self, err := path.Find(root)
	if err != nil {
		panic(&ContractError{Op: "clone root", Msg: err.Error()})
	}
	return root, self
}

// All returns t and every node below it in pre-order, functors before
// arguments.
func All(t *Term) []*Term {
	var r []*Term
	var walk func(*Term)
	walk = func(t *Term) {
		r = append(r, t)
		if t.kind == KindApp {
			walk(t.Fnc())
			for _, a := range t.Args() {
				walk(a)
			}
		}
	}
	walk(t)
	return r
}

// TermMap maps the canonical string of each node under root to the node. Later
// nodes in pre-order win.
func TermMap(root *Term) map[string]*Term {
	m := make(map[string]*Term)
	for _, t := range All(root) {
		m[t.Str()] = t
	}
	return m
}

// SubTerms returns the nodes under root whose canonical string matches
// target's.
func SubTerms(root, target *Term) []*Term {
	s := target.Str()
	var r []*Term
	for _, t := range All(root) {
		if t.Str() == s {
			r = append(r, t)
		}
	}
	return r
}

// Dump writes an indented tree of t for debugging.
func (t *Term) Dump(w io.Writer) {
	t.dump(w, "")
}

func (t *Term) dump(w io.Writer, nest string) {
	if t.kind == KindApp {
		fmt.Fprintf(w, "%s%d\n", nest, t.id)
		t.Fnc().dump(w, nest+"\t")
		for _, a := range t.Args() {
			a.dump(w, nest+"\t")
		}
		return
	}
	var s string
	switch t.kind {
	case KindConst:
		s = t.Coef.String()
	case KindRef:
		s = t.name
	case KindStr:
		s = strconv.Quote(t.text)
	case KindPath:
		s = t.indexes.String()
	}
	if t.kind != KindConst && !t.Coef.Value(1) {
		s = t.Coef.String() + " " + s
	}
	fmt.Fprintf(w, "%s%d:%s\n", nest, t.id, s)
}
