package mathcast

import (
	"strconv"
	"strings"
	"unicode"
)

// Token is a lexical token of the math notation.
type Token struct {
	Kind TokenKind
	// Sub distinguishes integer and float number tokens.
	Sub NumberKind
	// Text is the source text of the token. For strings, the quotes are
	// excluded.
	Text string
	// Pos is the offset in runes of the token's first character.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// TokenKind is the kind of a token.
type TokenKind int8

const (
	// TokenUnknown is a character that starts no other token.
	TokenUnknown TokenKind = iota
	// TokenIdent is an identifier, including word operators like in and cup.
	TokenIdent
	// TokenNumber is an integer or decimal literal.
	TokenNumber
	// TokenSymbol is an operator or punctuation from the symbol table.
	TokenSymbol
	// TokenPath is a path literal like #0:-1:2.
	TokenPath
	// TokenNewline is a line feed.
	TokenNewline
	// TokenString is a double-quoted string literal.
	TokenString
	// TokenIllegal is a string literal with no closing quote.
	TokenIllegal
	// TokenEOT marks the end of the text. It is always the last token.
	TokenEOT
)

var tokenKindNames = [...]string{
	TokenUnknown: "Unknown",
	TokenIdent:   "Ident",
	TokenNumber:  "Number",
	TokenSymbol:  "Symbol",
	TokenPath:    "Path",
	TokenNewline: "Newline",
	TokenString:  "String",
	TokenIllegal: "Illegal",
	TokenEOT:     "EOT",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// NumberKind classifies number tokens.
type NumberKind int8

const (
	NumberNone NumberKind = iota
	NumberInteger
	NumberFloat
)

// PathSep separates indices in path literals.
const PathSep = ":"

// symbols2 and symbols1 are the symbol table. Two-character symbols are
// matched before one-character symbols.
var (
	symbols2 = []string{
		"==", "!=", "<=", ">=",
		"$$", "&&", "||", "=>",
		"+=", "-=", "*=", "/=", "%=",
		"++", "--",
	}
	symbols1 = ",;()[]{}+-*/^%=:<>$!&|?"
)

// IsLetter reports whether r may start an identifier.
func IsLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentRune(r rune) bool {
	return IsLetter(r) || isDigit(r)
}

// isLetterOrAt reports whether s starts with a letter or with @ followed by a
// letter, i.e. whether s reads as a name rather than a symbol.
func isLetterOrAt(s string) bool {
	for i, r := range s {
		if i == 0 {
			if IsLetter(r) {
				return true
			}
			if r != '@' {
				return false
			}
			continue
		}
		return IsLetter(r)
	}
	return false
}

// Tokenize splits text into tokens, ending with a TokenEOT at the rune length
// of text. It never fails: characters outside the grammar become TokenUnknown
// tokens, and an unterminated string becomes a TokenIllegal token running to
// the end of the text.
func Tokenize(text string) []Token {
	src := []rune(text)
	var tokens []Token
	pos := 0
	for pos < len(src) {
		for pos < len(src) && (src[pos] == ' ' || src[pos] == '\t' || src[pos] == '\r') {
			pos++
		}
		if pos >= len(src) {
			break
		}
		start := pos
		tok := Token{Pos: start}
		ch1 := src[pos]
		var ch2 rune
		if pos+1 < len(src) {
			ch2 = src[pos+1]
		}
		switch {
		case ch1 == '\n':
			tok.Kind = TokenNewline
			pos++
		case IsLetter(ch1), ch1 == '@' && IsLetter(ch2):
			tok.Kind = TokenIdent
			for pos++; pos < len(src) && isIdentRune(src[pos]); pos++ {
			}
		case isDigit(ch1):
			tok.Kind = TokenNumber
			for ; pos < len(src) && isDigit(src[pos]); pos++ {
			}
			if pos < len(src) && src[pos] == '.' {
				for pos++; pos < len(src) && isDigit(src[pos]); pos++ {
				}
				tok.Sub = NumberFloat
			} else {
				tok.Sub = NumberInteger
			}
		case ch1 == '#':
			tok.Kind = TokenPath
			for pos++; pos < len(src) && (isDigit(src[pos]) || src[pos] == '-' || string(src[pos]) == PathSep); pos++ {
			}
		case ch1 == '"':
			end := -1
			for k := pos + 1; k < len(src); k++ {
				if src[k] == '"' {
					end = k
					break
				}
			}
			if end < 0 {
				tok.Kind = TokenIllegal
				tok.Text = string(src[pos:])
				tokens = append(tokens, tok)
				pos = len(src)
				continue
			}
			tok.Kind = TokenString
			tok.Text = string(src[pos+1 : end])
			tokens = append(tokens, tok)
			pos = end + 1
			continue
		case ch2 != 0 && issymbol2(string([]rune{ch1, ch2})):
			tok.Kind = TokenSymbol
			pos += 2
		case strings.ContainsRune(symbols1, ch1):
			tok.Kind = TokenSymbol
			pos++
		default:
			tok.Kind = TokenUnknown
			pos++
		}
		tok.Text = string(src[start:pos])
		tokens = append(tokens, tok)
	}
	return append(tokens, Token{Kind: TokenEOT, Pos: len(src)})
}

func issymbol2(s string) bool {
	for _, v := range symbols2 {
		if v == s {
			return true
		}
	}
	return false
}
