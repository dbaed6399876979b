package mathcast

import (
	"strconv"
	"strings"
)

// SyntaxError is an error indicating malformed input text. It implements
// InputError.
type SyntaxError struct {
	// Col is the rune offset of the offending token.
	Col int
	// Text is the offending token's text, or empty at the end of input.
	Text string
	// Want describes what the parser expected instead.
	Want string
	// Context is the token stream with the expectation inserted as <<want>>
	// where the parser stopped.
	Context string
}

func (err *SyntaxError) Error() string {
	var msg string
	switch {
	case err.Text == "":
		msg = "unexpected end of input, want " + err.Want
	case err.Want == "":
		msg = "unexpected " + strconv.Quote(err.Text)
	default:
		msg = "unexpected " + strconv.Quote(err.Text) + ", want " + err.Want
	}
	if err.Context != "" {
		msg += " in " + err.Context
	}
	return errpos(err.Col, msg)
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// errcontext reconstructs the text of tokens with want inserted before the
// token at index at.
func errcontext(tokens []Token, at int, want string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i == at {
			b.WriteString("<<" + want + ">>")
		}
		switch tok.Kind {
		case TokenString:
			b.WriteString(strconv.Quote(tok.Text))
		case TokenNewline:
			b.WriteByte(' ')
		default:
			b.WriteString(tok.Text)
		}
	}
	if at >= len(tokens) {
		b.WriteString("<<" + want + ">>")
	}
	return b.String()
}

// NameError is an error indicating a name that does not resolve to a declared
// variable.
type NameError struct {
	// Name is the unresolved name.
	Name string
}

func (err *NameError) Error() string {
	return "mathcast: undefined name " + strconv.Quote(err.Name)
}

// PathError is an error indicating a path that does not address a node.
type PathError struct {
	// Path is the path being followed.
	Path Path
	// Depth is the number of indices that were followed successfully.
	Depth int
}

func (err *PathError) Error() string {
	return "mathcast: path " + err.Path.String() + " has no node at index " + strconv.Itoa(err.Depth)
}

// ContractError is the panic value for operations on structurally invalid
// trees and other programming errors. It is never returned.
type ContractError struct {
	// Op is the operation that detected the violation.
	Op string
	// Msg describes the violation.
	Msg string
}

func (err *ContractError) Error() string {
	return "mathcast: " + err.Op + ": " + err.Msg
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input text implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes before
	// the start of the token that caused the error.
	Pos() int
}

var _ InputError = (*SyntaxError)(nil)
