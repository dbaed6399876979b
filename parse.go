package mathcast

import (
	"log/slog"
	"strconv"
	"strings"
)

// Root       = 'let' Decl { ',' Decl } | RelOp Arithmetic | Logical
// Logical    = Or [ ('=>' | 'iff') Or ]
// Or         = And { '||' And }
// And        = Relational(decl) { (';' | '&&') Relational(decl) }
// Decl       = ident { ',' ident } 'in' Arithmetic
// Relational = ( '[' Args ']' | Arithmetic ) { RelOp Arithmetic }
// RelOp      = '==' | '=' | '!=' | '<' | '<=' | 'in' | 'notin' | 'subset'
// Arithmetic = Additive { ('cup' | 'cap') Additive }
// Additive   = [ '-' ] Mul { ('+' | '-') Mul }
// Mul        = Div { '*' Div }
// Div        = Unary { ('/' | '%') Unary }
// Unary      = [ '-' ] Power
// Power      = Primary [ '^' Power ]
// Primary    = ident [ '(' Args ')' | { '.' ident } ] | num | string | path
//            | '(' Relational ')' [ '(' Args ')' ] | '{' Relational '|' Logical '}'
// Args       = [ Relational { ',' Relational } ]

// relops are the operators chained at the relational level.
var relops = []string{"==", "=", "!=", "<", "<=", "in", "notin", "subset"}

type parser struct {
	s      *Session
	tokens []Token
	i      int
}

// Parse parses text into a new expression tree owned by the session. The
// result is a root: its parent is cleared and every node below it is linked
// to its owning application. Any input that is not a single complete
// expression gives a *SyntaxError.
func (s *Session) Parse(text string) (*Term, error) {
	p := parser{s: s}
	for _, tok := range Tokenize(text) {
		switch tok.Kind {
		case TokenNewline:
			continue
		case TokenIllegal:
			p.tokens = append(p.tokens, tok)
			p.i = len(p.tokens) - 1
			return nil, p.fail(`closing "`)
		case TokenUnknown:
			if tok.Text != "." {
				s.log.Debug("unknown character", slog.String("text", tok.Text), slog.Int("pos", tok.Pos))
			}
		}
		p.tokens = append(p.tokens, tok)
	}
	t, err := p.root()
	if err != nil {
		return nil, err
	}
	if p.tok().Kind != TokenEOT {
		return nil, p.fail("end of input")
	}
	t.Detach()
	return t, nil
}

// MustParse is like Parse but panics on error.
func (s *Session) MustParse(text string) *Term {
	t, err := s.Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// tok returns the current token, or the end token if all are consumed.
func (p *parser) tok() Token {
	return p.peek(0)
}

func (p *parser) peek(n int) Token {
	if p.i+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.i+n]
}

func (p *parser) next() {
	if p.i < len(p.tokens) {
		p.i++
	}
}

// is reports whether the current token is an operator, punctuation, or word
// with the given text. String literals never match.
func (p *parser) is(text string) bool {
	tok := p.tok()
	switch tok.Kind {
	case TokenSymbol, TokenIdent, TokenUnknown:
		return tok.Text == text
	}
	return false
}

func (p *parser) isAny(texts ...string) bool {
	for _, text := range texts {
		if p.is(text) {
			return true
		}
	}
	return false
}

// expect consumes the current token if it has the given text.
func (p *parser) expect(text string) error {
	if !p.is(text) {
		return p.fail(strconv.Quote(text))
	}
	p.next()
	return nil
}

// fail creates a syntax error at the current token.
func (p *parser) fail(want string) error {
	tok := p.tok()
	return &SyntaxError{
		Col:     tok.Pos,
		Text:    tok.Text,
		Want:    want,
		Context: errcontext(p.tokens, p.i, want),
	}
}

func (p *parser) root() (*Term, error) {
	switch {
	case p.is("let") && p.peek(1).Kind == TokenIdent:
		p.next()
		var decls []*Term
		for {
			d, err := p.declaration()
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
			if !p.is(",") {
				break
			}
			p.next()
		}
		if len(decls) == 1 {
			return decls[0], nil
		}
		return p.s.OpApp("&&", decls...), nil
	case p.isLeadRel():
		app := p.s.OpApp(p.tok().Text)
		p.next()
		t, err := p.arithmetic()
		if err != nil {
			return nil, err
		}
		app.AddArg(t)
		return app, nil
	}
	return p.logical()
}

// isLeadRel reports whether the input starts with a relational operator
// applied to a right operand alone. A word operator followed by anything that
// cannot start an operand, such as a parenthesis, is a name instead.
func (p *parser) isLeadRel() bool {
	if !p.isAny(relops...) {
		return false
	}
	if p.tok().Kind != TokenIdent {
		return true
	}
	switch next := p.peek(1); next.Kind {
	case TokenIdent, TokenNumber, TokenString, TokenPath:
		return true
	case TokenSymbol:
		return next.Text == "{"
	}
	return false
}

func (p *parser) logical() (*Term, error) {
	t1, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.isAny("=>", "iff") {
		return t1, nil
	}
	op := p.tok().Text
	p.next()
	t2, err := p.or()
	if err != nil {
		return nil, err
	}
	return p.s.OpApp(op, t1, t2), nil
}

func (p *parser) or() (*Term, error) {
	t1, err := p.and()
	if err != nil {
		return nil, err
	}
	if !p.is("||") {
		return t1, nil
	}
	app := p.s.OpApp("||", t1)
	for p.is("||") {
		p.next()
		t2, err := p.and()
		if err != nil {
			return nil, err
		}
		app.AddArg(t2)
	}
	return app, nil
}

func (p *parser) and() (*Term, error) {
	t1, err := p.relational(true)
	if err != nil {
		return nil, err
	}
	if !p.isAny(";", "&&") {
		return t1, nil
	}
	app := p.s.OpApp("&&", t1)
	for p.isAny(";", "&&") {
		p.next()
		t2, err := p.relational(true)
		if err != nil {
			return nil, err
		}
		app.AddArg(t2)
	}
	return app, nil
}

// isDeclList reports whether the upcoming tokens are two or more
// comma-separated identifiers followed by in.
func (p *parser) isDeclList() bool {
	if p.tok().Kind != TokenIdent {
		return false
	}
	k, n := 1, 0
	for p.peek(k).Text == "," && p.peek(k+1).Kind == TokenIdent {
		k += 2
		n++
	}
	tok := p.peek(k)
	return n > 0 && tok.Kind == TokenIdent && tok.Text == "in"
}

func (p *parser) declaration() (*Term, error) {
	var ids []*Term
	for {
		tok := p.tok()
		if tok.Kind != TokenIdent {
			return nil, p.fail("identifier")
		}
		p.next()
		ids = append(ids, p.s.Ref(tok.Text))
		if !p.is(",") {
			break
		}
		p.next()
	}
	if err := p.expect("in"); err != nil {
		return nil, err
	}
	set, err := p.arithmetic()
	if err != nil {
		return nil, err
	}
	return p.s.OpApp("in", p.s.OpApp(",", ids...), set), nil
}

func (p *parser) relational(inAnd bool) (*Term, error) {
	if inAnd && p.isDeclList() {
		return p.declaration()
	}
	var t1 *Term
	if p.is("[") {
		t1 = p.s.OpApp("[]")
		if err := p.args("[", "]", t1); err != nil {
			return nil, err
		}
	} else {
		var err error
		t1, err = p.arithmetic()
		if err != nil {
			return nil, err
		}
	}
	for p.isAny(relops...) {
		op := p.tok().Text
		app := p.s.OpApp(op, t1)
		for p.is(op) {
			p.next()
			t2, err := p.arithmetic()
			if err != nil {
				return nil, err
			}
			app.AddArg(t2)
		}
		t1 = app
	}
	return t1, nil
}

func (p *parser) arithmetic() (*Term, error) {
	t1, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.isAny("cup", "cap") {
		op := p.tok().Text
		app := p.s.OpApp(op, t1)
		for p.is(op) {
			p.next()
			t2, err := p.additive()
			if err != nil {
				return nil, err
			}
			app.AddArg(t2)
		}
		t1 = app
	}
	return t1, nil
}

func (p *parser) additive() (*Term, error) {
	neg := false
	if p.is("-") {
		neg = true
		p.next()
	}
	t1, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	if neg {
		t1.Coef = t1.Coef.Neg()
	}
	if !p.isAny("+", "-") {
		return t1, nil
	}
	app := p.s.OpApp("+", t1)
	for p.isAny("+", "-") {
		op := p.tok().Text
		p.next()
		t2, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			t2.Coef = t2.Coef.Neg()
		}
		app.AddArg(t2)
	}
	return app, nil
}

func (p *parser) multiplicative() (*Term, error) {
	t1, err := p.div()
	if err != nil {
		return nil, err
	}
	if !p.is("*") {
		return t1, nil
	}
	app := p.s.OpApp("*", t1)
	for p.is("*") {
		p.next()
		t2, err := p.div()
		if err != nil {
			return nil, err
		}
		app.AddArg(t2)
	}
	return foldcoef(app), nil
}

// foldcoef moves a leading integer constant of a product into a coefficient.
// When one factor remains, it carries the coefficient and replaces the
// product. Constants in any other position stay where they are.
func foldcoef(app *Term) *Term {
	c := app.Arg(0)
	if c.kind != KindConst || c.Coef.Den != 1 {
		return app
	}
	c.RemoveArg()
	if app.NumArgs() == 1 {
		t := app.Arg(0)
		t.RemoveArg()
		t.Coef = t.Coef.Mul(c.Coef, app.Coef)
		return t
	}
	app.Coef = app.Coef.Mul(c.Coef)
	return app
}

func (p *parser) div() (*Term, error) {
	t1, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isAny("/", "%") {
		op := p.tok().Text
		app := p.s.OpApp(op, t1)
		for p.is(op) {
			p.next()
			t2, err := p.unary()
			if err != nil {
				return nil, err
			}
			app.AddArg(t2)
		}
		t1 = app
	}
	return t1, nil
}

func (p *parser) unary() (*Term, error) {
	if !p.is("-") {
		return p.power()
	}
	p.next()
	t, err := p.power()
	if err != nil {
		return nil, err
	}
	t.Coef = t.Coef.Neg()
	return t, nil
}

func (p *parser) power() (*Term, error) {
	t1, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.is("^") {
		return t1, nil
	}
	p.next()
	t2, err := p.power()
	if err != nil {
		return nil, err
	}
	return p.s.OpApp("^", t1, t2), nil
}

func (p *parser) primary() (*Term, error) {
	tok := p.tok()
	switch tok.Kind {
	case TokenIdent:
		p.next()
		ref := p.s.Ref(tok.Text)
		switch {
		case p.is("("):
			app := p.s.App(ref)
			if err := p.args("(", ")", app); err != nil {
				return nil, err
			}
			return app, nil
		case p.is("."):
			app := p.s.OpApp(".", ref)
			for p.is(".") {
				p.next()
				id := p.tok()
				if id.Kind != TokenIdent {
					return nil, p.fail("identifier")
				}
				p.next()
				app.AddArg(p.s.Ref(id.Text))
			}
			return app, nil
		}
		return ref, nil
	case TokenNumber:
		r, ok := parsenum(tok)
		if !ok {
			return nil, p.fail("number in range")
		}
		p.next()
		return p.s.Num(r.Num, r.Den), nil
	case TokenString:
		p.next()
		return p.s.Str(tok.Text), nil
	case TokenPath:
		path, err := ParsePath(tok.Text)
		if err != nil {
			return nil, p.fail("path literal")
		}
		p.next()
		return p.s.PathTerm(path), nil
	}
	switch {
	case p.is("("):
		p.next()
		t, err := p.relational(false)
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if p.is("(") {
			app := p.s.App(t)
			if err := p.args("(", ")", app); err != nil {
				return nil, err
			}
			return app, nil
		}
		return t, nil
	case p.is("{"):
		p.next()
		elem, err := p.relational(false)
		if err != nil {
			return nil, err
		}
		if err := p.expect("|"); err != nil {
			return nil, err
		}
		pred, err := p.logical()
		if err != nil {
			return nil, err
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
		return p.s.OpApp("{|}", elem, pred), nil
	}
	return nil, p.fail("expression")
}

// args parses a possibly empty comma-separated argument list between start
// and end, appending each argument to app.
func (p *parser) args(start, end string, app *Term) error {
	if err := p.expect(start); err != nil {
		return err
	}
	if p.is(end) {
		p.next()
		return nil
	}
	for {
		t, err := p.relational(false)
		if err != nil {
			return err
		}
		app.AddArg(t)
		if !p.is(",") {
			break
		}
		p.next()
	}
	return p.expect(end)
}

// parsenum converts a number token to an unreduced rational: integers over 1,
// and decimals as their digits over a power of ten.
func parsenum(tok Token) (Rational, bool) {
	whole, frac, _ := strings.Cut(tok.Text, ".")
	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return Rational{}, false
	}
	d := int64(1)
	for range frac {
		if d > 1e17 {
			return Rational{}, false
		}
		d *= 10
	}
	return R(n, d), true
}
