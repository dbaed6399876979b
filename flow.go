package mathcast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Cursor is the position of a speech engine reading the spoken text of a
// flow.
type Cursor interface {
	// Speaking reports whether speech is in progress.
	Speaking() bool
	// CharOffset returns the offset in the spoken text that speech has
	// reached.
	CharOffset() int
}

// Highlighter is something displayed alongside a formula that can be
// highlighted when the formula mentions it by name.
type Highlighter interface {
	SetHighlighted(bool)
}

type flowKind int8

const (
	flowSeq    flowKind = iota
	flowNum             // ConstNum leaf
	flowRef             // RefVar leaf
	flowLit             // literal LaTeX fragment
	flowSpeech          // spoken words with no LaTeX
)

// flowNode is a node of a flow tree. Sequences reveal their children in
// order; every other kind is a leaf.
type flowNode struct {
	kind flowKind
	// term is the node the flow node was built from, if any.
	term *Term
	// text is the name of a ref leaf, the LaTeX source of a lit leaf, or the
	// words of a speech leaf.
	text  string
	nodes []*flowNode
	// words overrides the pronunciation of a leaf.
	words  []string
	phrase *Phrase
}

// tex returns the LaTeX a leaf reveals.
func (n *flowNode) tex() string {
	switch n.kind {
	case flowNum:
		return n.term.Coef.Tex()
	case flowRef:
		return TexName(n.text)
	case flowLit:
		return TexName(n.text)
	case flowSpeech, flowSeq:
		return ""
	default:
		panic(&ContractError{Op: "flow", Msg: "invalid flow node kind " + strconv.Itoa(int(n.kind))})
	}
}

// initString returns the text a node shows before it is revealed. Structural
// braces appear from the start so that partial LaTeX stays balanced.
func (n *flowNode) initString() string {
	if n.kind != flowLit {
		return ""
	}
	switch n.text {
	case "{", "}", "(", ")", "}{", "}^{", "^{", "]{", `\left|`, `\right|`:
		return n.text
	}
	if n.text != `\{` && strings.HasPrefix(n.text, `\`) && (strings.HasSuffix(n.text, "{") || strings.HasSuffix(n.text, "[")) {
		return n.text
	}
	return ""
}

// say sets the words spoken for a leaf. With no words, the leaf is silent.
func (n *flowNode) say(words ...string) *flowNode {
	if words == nil {
		words = []string{}
	}
	n.words = words
	return n
}

// Flow is a formula decomposed into independently revealed LaTeX fragments,
// each with its pronunciation.
type Flow struct {
	root    *flowNode
	phrases []*Phrase
	text    string
}

// NewFlow builds the flow of root. root is treated as having no parent.
// Panics with a *ContractError if the tree contains a path literal or is
// otherwise malformed.
func NewFlow(root *Term) *Flow {
	b := flowBuilder{root: root, seen: make(map[string]bool), log: root.s.log}
	f := &Flow{root: b.term(root)}
	b.speech(f.root, &f.phrases)
	f.text = speak(f.phrases)
	return f
}

// Text returns the spoken text of the flow.
func (f *Flow) Text() string {
	return f.text
}

// Phrases returns the phrases of the flow in speaking order.
func (f *Flow) Phrases() []Phrase {
	r := make([]Phrase, len(f.phrases))
	for i, p := range f.phrases {
		r[i] = *p
		r[i].Words = append([]string(nil), p.Words...)
	}
	return r
}

// Dump writes the flow tree for debugging.
func (f *Flow) Dump(w io.Writer) {
	dumpflow(w, f.root, "")
}

func dumpflow(w io.Writer, n *flowNode, nest string) {
	id := ""
	if n.term != nil {
		id = strconv.Itoa(int(n.term.id))
	}
	if n.kind == flowSeq {
		fmt.Fprintf(w, "%s%s\n", nest, id)
		for _, c := range n.nodes {
			dumpflow(w, c, nest+"\t")
		}
		return
	}
	s := n.tex()
	if n.kind == flowSpeech {
		s = "(" + n.text + ")"
	}
	fmt.Fprintf(w, "%s%s:%s\n", nest, id, s)
}

type flowBuilder struct {
	root *Term
	// seen holds tokens with no pronunciation that have been logged.
	seen map[string]bool
	log  *slog.Logger
}

// node converts a term or a literal LaTeX fragment into a flow node.
func (b *flowBuilder) node(x any) *flowNode {
	switch x := x.(type) {
	case *flowNode:
		return x
	case string:
		return &flowNode{kind: flowLit, text: x}
	case *Term:
		return b.term(x)
	default:
		panic(&ContractError{Op: "flow", Msg: fmt.Sprintf("cannot build flow from %T", x)})
	}
}

func (b *flowBuilder) seq(xs ...any) *flowNode {
	n := &flowNode{kind: flowSeq}
	for _, x := range xs {
		if x == nil {
			continue
		}
		n.nodes = append(n.nodes, b.node(x))
	}
	return n
}

func spc(text string) *flowNode {
	return &flowNode{kind: flowSpeech, text: text}
}

// join builds a sequence of terms separated by a delimiter fragment.
func (b *flowBuilder) join(ts []*Term, delim string) *flowNode {
	if len(ts) == 1 {
		return b.term(ts[0])
	}
	n := &flowNode{kind: flowSeq}
	for i, t := range ts {
		if i != 0 {
			n.nodes = append(n.nodes, b.node(delim))
		}
		n.nodes = append(n.nodes, b.term(t))
	}
	return n
}

func (b *flowBuilder) parent(t *Term) *Term {
	if t == b.root {
		return nil
	}
	return t.Parent()
}

func (b *flowBuilder) term(t *Term) *flowNode {
	var n *flowNode
	switch t.kind {
	case KindConst:
		return &flowNode{kind: flowNum, term: t, words: numWords(t.Coef)}
	case KindRef:
		n = &flowNode{kind: flowRef, term: t, text: t.name}
	case KindStr:
		n = &flowNode{kind: flowLit, term: t, text: `\text{` + t.text + `}`, words: strings.Fields(t.text)}
	case KindPath:
		panic(&ContractError{Op: "flow", Msg: "path literal " + t.indexes.String()})
	case KindApp:
		n = b.app(t)
		n.term = t
	default:
		panic(&ContractError{Op: "flow", Msg: "invalid node kind " + t.kind.String()})
	}
	c := t.Coef
	switch {
	case c.Value(1):
		return n
	case c.Value(-1):
		n = b.seq("-", n)
	case c.Den == 1:
		num := &flowNode{kind: flowLit, text: strconv.FormatInt(c.Num, 10), words: numWords(c)}
		n = b.seq(num, n)
	default:
		panic(&ContractError{Op: "flow", Msg: "fractional coefficient " + c.String() + " on " + t.kind.String()})
	}
	n.term = t
	return n
}

func (b *flowBuilder) app(t *Term) *flowNode {
	fnc := t.Fnc()
	args := t.Args()
	name := t.FncName()
	n := len(args)
	var node *flowNode
	switch {
	case fnc.kind == KindApp:
		node = b.seq("(", fnc, ")", b.seq("(", b.join(args, ","), ")"))
	case fnc.kind != KindRef:
		panic(&ContractError{Op: "flow", Msg: "functor is a " + fnc.kind.String()})
	case name == "lim" && n == 3:
		node = b.seq(`\lim_{`, args[1], `\to`, args[2], "}", args[0])
	case name == "lim" && n == 1:
		node = b.seq(`\lim`, args[0])
	case name == "sum" && n == 1:
		node = b.seq(`\sum`, args[0])
	case name == "sum" && n == 3:
		node = b.seq(`\sum_{`, args[1], "}^{", args[2], "}", args[0])
	case name == "sum" && n == 4:
		node = b.seq(`\sum_{`, args[1], "=", args[2], "}^{", args[3], "}", args[0])
	case name == "log" && n == 1:
		node = b.seq(`\log`, args[0])
	case name == "log" && n == 2:
		node = b.seq(`\log_{`, args[1], "}", args[0])
	case name == "{|}":
		if n != 2 {
			panic(&ContractError{Op: "flow", Msg: "set builder with " + strconv.Itoa(n) + " arguments"})
		}
		node = b.seq(`\{`, args[0], b.node(`\mid`).say("such", "that"), args[1], `\}`)
	case (name == "in" || name == "notin" || name == "subset") && n == 2:
		left := b.term(args[0])
		if args[0].IsApp(",") {
			left = b.join(args[0].Args(), ",")
		}
		node = b.seq(left, name, args[1])
	case (name == "in" || name == "notin" || name == "subset") && n == 1:
		node = b.seq(name, args[0])
	case name == "complement" && n == 1:
		node = b.seq("{", args[0], "}^{", b.node(`\complement`).say("complement"), "}")
	case name == "diff" || name == "pdiff":
		if n != 2 && n != 3 {
			panic(&ContractError{Op: "flow", Msg: name + " with " + strconv.Itoa(n) + " arguments"})
		}
		d := "d"
		if name == "pdiff" {
			d = `\partial`
		}
		var ord func() *flowNode
		if n == 3 {
			ord = func() *flowNode { return b.seq("^{", args[2], "}") }
		} else {
			ord = func() *flowNode { return nil }
		}
		if args[0].IsDiv() {
			node = b.seq(`\frac{`, d, optional(ord()), "}{", spc("over"), d, args[1], optional(ord()), "}", b.seq("(", args[0], ")"))
		} else {
			node = b.seq(`\frac{`, d, optional(ord()), args[0], "}{", spc("over"), d, args[1], optional(ord()), "}")
		}
	case name == "sqrt":
		if n != 1 {
			panic(&ContractError{Op: "flow", Msg: "sqrt with " + strconv.Itoa(n) + " arguments"})
		}
		node = b.seq(`\sqrt{`, args[0], "}")
	case name == "nth_root" && n == 2:
		node = b.seq(b.node(`\sqrt[`).say(), args[1], b.node("]{").say("th", "root", "of"), args[0], "}")
	case name == "abs" && n == 1:
		node = b.seq(b.node(`\left|`).say("absolute", "value", "of"), args[0], b.node(`\right|`).say())
	case (name == "cup" || name == "cap" || name == "iff") && n >= 2:
		node = b.join(args, name)
	case (name == "sin" || name == "cos") && n == 1 && args[0].kind != KindApp:
		node = b.seq(fnc, args[0])
	case isLetterOrAt(name):
		node = b.seq(fnc, b.seq("(", b.join(args, ","), ")"))
	default:
		node = b.operator(t, name, args)
	}

	if p := b.parent(t); p != nil {
		switch {
		case (t.IsAdd() || t.IsMul()) && p.IsLim():
			node = b.seq("(", node, ")")
		case t.IsOperator() && p.IsOperator() && !p.IsDiv():
			if p.IsApp("^") && len(p.args) > 1 && p.args[1] == t.id {
				break
			}
			if p.Precedence() <= t.Precedence() {
				node = b.seq("(", node, ")")
			}
		}
	}
	return node
}

// optional converts a nil flow node to an untyped nil so that seq skips it.
func optional(n *flowNode) any {
	if n == nil {
		return nil
	}
	return n
}

func (b *flowBuilder) operator(t *Term, name string, args []*Term) *flowNode {
	n := len(args)
	switch name {
	case "+":
		switch n {
		case 0:
			panic(&ContractError{Op: "flow", Msg: "sum with no arguments"})
		case 1:
			return b.term(args[0])
		}
		node := &flowNode{kind: flowSeq}
		for i, a := range args {
			if i != 0 && a.Coef.Sign() >= 0 {
				node.nodes = append(node.nodes, b.node("+"))
			}
			node.nodes = append(node.nodes, b.term(a))
		}
		return node
	case "/":
		if n < 2 {
			panic(&ContractError{Op: "flow", Msg: "division with " + strconv.Itoa(n) + " arguments"})
		}
		node := &flowNode{kind: flowSeq}
		for range args[1:] {
			node.nodes = append(node.nodes, b.node(`\frac{`))
		}
		node.nodes = append(node.nodes, b.term(args[0]))
		for _, a := range args[1:] {
			node.nodes = append(node.nodes, b.node("}{"), spc("over"), b.term(a), b.node("}"))
		}
		return node
	case "^":
		if n != 2 {
			panic(&ContractError{Op: "flow", Msg: "power with " + strconv.Itoa(n) + " arguments"})
		}
		exp := b.term(args[1])
		switch {
		case args[1].IsValue(2):
			exp.say("squared")
		case args[1].IsValue(3):
			exp.say("cubed")
		default:
			exp = b.seq(spc("to the power of"), exp)
		}
		if base := args[0]; isTrig(base) {
			return b.seq("{", base.Fnc(), "}^{", exp, "}", base.Arg(0))
		}
		return b.seq("{", args[0], "}^{", exp, "}")
	case ",":
		return b.join(args, ",")
	case "[]":
		return b.seq("[", b.join(args, ","), "]")
	}
	if n == 1 {
		return b.seq(name, args[0])
	}
	if n == 0 {
		return b.seq(name)
	}
	return b.join(args, name)
}

// speech assigns phrases to the leaves under n in reveal order.
func (b *flowBuilder) speech(n *flowNode, phrases *[]*Phrase) {
	var words []string
	switch n.kind {
	case flowSeq:
		for _, c := range n.nodes {
			b.speech(c, phrases)
		}
		return
	case flowSpeech:
		words = strings.Fields(n.text)
	default:
		if n.words != nil {
			words = n.words
			break
		}
		var src string
		switch n.kind {
		case flowRef:
			src = TexName(n.text)
		case flowLit:
			if structural[n.text] {
				return
			}
			src = n.text
		}
		words = Pronounce(src)
		if words == nil {
			if src != "" && !b.seen[src] {
				b.seen[src] = true
				b.log.Debug("no pronunciation", slog.String("token", src))
			}
			return
		}
	}
	if len(words) == 0 {
		return
	}
	n.phrase = &Phrase{Words: words}
	*phrases = append(*phrases, n.phrase)
}

// Reveal returns a new reveal of the flow. If cursor is nil, every step
// proceeds immediately. Highlighters are keyed by variable name and are
// highlighted when a reference to that name is first revealed.
func (f *Flow) Reveal(cursor Cursor, highlights map[string]Highlighter) *Reveal {
	return &Reveal{
		top:        newFrame(f.root),
		cursor:     cursor,
		highlights: highlights,
	}
}

// Reveal is a reveal in progress: a sequence of partial LaTeX snapshots of a
// flow, each one showing at least as much as the last. After a leaf is
// revealed, the reveal holds on it until the cursor reaches its phrase or
// speech stops. The final snapshot is always the whole formula.
type Reveal struct {
	top        *frame
	cursor     Cursor
	highlights map[string]Highlighter
}

// frame is the progress of one flow node.
type frame struct {
	n *flowNode
	// strs are the current texts of a sequence's children.
	strs []string
	// idx is the child of a sequence being revealed, and child its frame.
	idx   int
	child *frame
	// begun is whether a leaf has been visited.
	begun bool
	// done is whether the node has produced its final snapshot.
	done bool
}

func newFrame(n *flowNode) *frame {
	f := &frame{n: n}
	if n.kind == flowSeq {
		f.strs = make([]string, len(n.nodes))
		for i, c := range n.nodes {
			f.strs[i] = c.initString()
		}
	}
	return f
}

// Next advances the reveal by one step and returns the snapshot. The result
// is false once the reveal is complete.
func (r *Reveal) Next() (string, bool) {
	return r.step(r.top)
}

func (r *Reveal) step(f *frame) (string, bool) {
	if f.done {
		return "", false
	}
	switch f.n.kind {
	case flowSeq:
		for f.idx < len(f.n.nodes) {
			if f.child == nil {
				f.child = newFrame(f.n.nodes[f.idx])
			}
			if s, ok := r.step(f.child); ok {
				f.strs[f.idx] = s
				return strings.Join(f.strs, " "), true
			}
			f.child = nil
			f.idx++
		}
		f.done = true
		return strings.Join(f.strs, " "), true
	case flowSpeech:
		f.done = true
		return "", true
	case flowNum, flowRef, flowLit:
		if !f.begun {
			f.begun = true
			if f.n.kind == flowRef {
				if h := r.highlights[f.n.text]; h != nil {
					h.SetHighlighted(true)
				}
			}
		}
		if r.waiting(f.n) {
			return f.n.tex(), true
		}
		f.done = true
		return f.n.tex(), true
	default:
		panic(&ContractError{Op: "reveal", Msg: "invalid flow node kind " + strconv.Itoa(int(f.n.kind))})
	}
}

// waiting reports whether speech has yet to reach the phrase of a leaf.
func (r *Reveal) waiting(n *flowNode) bool {
	return r.cursor != nil && n.phrase != nil && r.cursor.Speaking() && r.cursor.CharOffset() < n.phrase.Start
}

// PollInterval is the time ShowFlow waits between reveal steps.
const PollInterval = 10 * time.Millisecond

// ShowFlow reveals f in time with cursor, passing each snapshot to render,
// then waits for speech to finish. It returns early with the context's error
// if ctx is canceled.
func ShowFlow(ctx context.Context, f *Flow, cursor Cursor, highlights map[string]Highlighter, render func(string)) error {
	tick := time.NewTicker(PollInterval)
	defer tick.Stop()
	r := f.Reveal(cursor, highlights)
	for {
		s, ok := r.Next()
		if !ok {
			break
		}
		render(s)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	for cursor != nil && cursor.Speaking() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}
