package mathcast

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Phrase is the pronunciation of one flow leaf and its place in the spoken
// text of the flow.
type Phrase struct {
	// Words are the words spoken for the leaf.
	Words []string
	// Start and End delimit the phrase in the spoken text as byte offsets,
	// End exclusive. Start includes the separating space, if any.
	Start, End int
}

var symbolWords = map[string]string{
	"sin":   "sine",
	"cos":   "cosine",
	"tan":   "tangent",
	"sec":   "secant",
	"cosec": "cosecant",
	"cot":   "cotangent",
	"=":     "equals",
	"==":    "equals",
	"!=":    "not equal to",
	"<":     "is less than",
	">":     "is greater than",
	"<=":    "is less than or equal to",
	">=":    "is greater than or equal to",
	"+":     "plus",
	"-":     "minus",
	"*":     "times",
}

var macroWords = map[string]string{
	"dif":   "diff",
	"Delta": "delta",
	"lim":   "limit",
	"sqrt":  "square root",
	"ne":    "not equals",
	"lt":    "is less than",
	"gt":    "is greater than",
	"le":    "is less than or equals",
	"ge":    "is greater than or equals",
	"hbar":  "h bar",
}

// structural are LaTeX fragments that are never spoken.
var structural = map[string]bool{
	"{": true, "}": true, "(": true, ")": true, "}{": true, "}^{": true,
	"^{": true, `\frac{`: true, "[": true, "]": true, `\{`: true, `\}`: true,
	",": true,
}

// Pronounce returns the words for a LaTeX token or operator symbol, or nil if
// it has no pronunciation.
func Pronounce(word string) []string {
	word = strings.TrimSuffix(word, "{")
	word = strings.TrimSuffix(word, "_")
	if w, ok := strings.CutPrefix(word, `\`); ok {
		if s, ok := macroWords[w]; ok {
			return strings.Fields(s)
		}
		word = w
	}
	if s, ok := symbolWords[word]; ok {
		return strings.Fields(s)
	}
	switch {
	case word == "":
		return nil
	case isWord(word):
		r, n := utf8.DecodeRuneInString(word)
		if unicode.IsUpper(r) && IsGreek(word) {
			return []string{"large", string(unicode.ToLower(r)) + word[n:]}
		}
		return []string{word}
	case isNumeral(word):
		return []string{word}
	case word[0] == '-' && isNumeral(word[1:]):
		return []string{"minus", word[1:]}
	}
	return nil
}

// numWords is the pronunciation of a rational constant.
func numWords(r Rational) []string {
	var w []string
	if r.Sign() < 0 {
		w = append(w, "minus")
		r = r.Abs()
	}
	w = append(w, strconv.FormatInt(r.Num, 10))
	if r.Den != 1 {
		w = append(w, "over", strconv.FormatInt(r.Den, 10))
	}
	return w
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func isNumeral(s string) bool {
	whole, frac, ok := strings.Cut(s, ".")
	if whole == "" || (ok && frac == "") {
		return false
	}
	for _, r := range whole + frac {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

// speak joins the words of phrases with single spaces and records each
// phrase's span in the result.
func speak(phrases []*Phrase) string {
	var b strings.Builder
	for _, p := range phrases {
		p.Start = b.Len()
		for _, w := range p.Words {
			if w == "" {
				continue
			}
			if b.Len() != 0 {
				b.WriteByte(' ')
			}
			b.WriteString(w)
		}
		p.End = b.Len()
	}
	return b.String()
}
