package front

import (
	"fmt"
)

type (
	Kind int

	Token struct {
		Kind Kind
		Text string
		Line int
	}

	// SyntaxError is a lexical or grammar error in the source text.
	SyntaxError struct {
		Line  int
		Token Token
		Msg   string
	}
)

const (
	EOF Kind = iota
	Ident
	Num
	Print
	For
	Assign
	Semicolon
	Comma
	LParen
	RParen
	LCurl
	RCurl
	Plus
	Minus
	Star
	Slash
	Less
	Greater
)

var kindNames = [...]string{
	EOF:       "end of file",
	Ident:     "identifier",
	Num:       "number",
	Print:     "print",
	For:       "for",
	Assign:    ":=",
	Semicolon: ";",
	Comma:     ",",
	LParen:    "(",
	RParen:    ")",
	LCurl:     "{",
	RCurl:     "}",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Less:      "<",
	Greater:   ">",
}

var punct = map[byte]Kind{
	';': Semicolon,
	',': Comma,
	'(': LParen,
	')': RParen,
	'{': LCurl,
	'}': RCurl,
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	'<': Less,
	'>': Greater,
}

// Tokenize splits the source text into tokens. The last token is EOF.
func Tokenize(b []byte) (toks []Token, err error) {
	line := 1

	for i := 0; ; {
		var t Token

		t, i, line, err = token(b, i, line)
		if err != nil {
			return toks, err
		}

		toks = append(toks, t)

		if t.Kind == EOF {
			return toks, nil
		}
	}
}

func token(b []byte, st, line int) (t Token, i int, _ int, err error) {
	i, line = skipSpaces(b, st, line)
	st = i

	t.Line = line

	if i == len(b) {
		return t, i, line, nil
	}

	c := b[i]

	if k, ok := punct[c]; ok {
		t.Kind = k
		t.Text = string(b[i : i+1])

		return t, i + 1, line, nil
	}

	switch {
	case c == ':':
		if i+1 == len(b) || b[i+1] != '=' {
			return t, i, line, &SyntaxError{Line: line, Msg: "expected := after :"}
		}

		t.Kind = Assign
		t.Text = ":="

		return t, i + 2, line, nil
	case isLetter(c):
		i = skipIdent(b, i+1)

		t.Text = string(b[st:i])

		switch t.Text {
		case "print":
			t.Kind = Print
		case "for":
			t.Kind = For
		default:
			t.Kind = Ident
		}
	case isDigit(c):
		i = skipDigits(b, i+1)

		if i < len(b) && b[i] == '.' {
			i = skipDigits(b, i+1)
		}

		t.Kind = Num
		t.Text = string(b[st:i])
	default:
		return t, i, line, &SyntaxError{Line: line, Msg: fmt.Sprintf("invalid character %q", c)}
	}

	if i < len(b) && (isLetter(b[i]) || isDigit(b[i]) || b[i] == '.' || b[i] == '_') {
		return t, i, line, &SyntaxError{Line: line, Msg: fmt.Sprintf("invalid character %q after %s", b[i], t.Text)}
	}

	return t, i, line, nil
}

func skipSpaces(b []byte, i, line int) (int, int) {
	for i < len(b) {
		switch b[i] {
		case '\n':
			line++
		case ' ', '\t', '\r':
		default:
			return i, line
		}

		i++
	}

	return i, line
}

func skipIdent(b []byte, i int) int {
	for i < len(b) && (isLetter(b[i]) || isDigit(b[i]) || b[i] == '_') {
		i++
	}

	return i
}

func skipDigits(b []byte, i int) int {
	for i < len(b) && isDigit(b[i]) {
		i++
	}

	return i
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}

	return kindNames[k]
}

func (t Token) String() string {
	switch t.Kind {
	case Ident, Num:
		return fmt.Sprintf("%v %q", t.Kind, t.Text)
	}

	return fmt.Sprintf("%q", t.Kind.String())
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
