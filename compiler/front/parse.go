package front

import (
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/slp/compiler/ast"
)

type (
	Parser struct{}

	parser struct {
		toks []Token
		i    int

		prev Kind // token before the last consumed one
		cur  Kind
	}
)

func (p *Parser) ParseFile(ctx context.Context, name string) (ast.Stmt, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}

	return p.ParseFileData(ctx, data)
}

// ParseFileData parses a whole program:
//
//	prog   := stm EOF
//	stm    := single { ";" single }
//	single := ID ":=" exp | "print" "(" exp { "," exp } ")"
//	        | "for" "(" single ";" cond ";" single ")" "{" stm "}"
//	exp    := (ID | NUM) [ binop exp ] | "(" stm "," exp ")"
//	cond   := exp ("<" | ">") exp
func (p *Parser) ParseFileData(ctx context.Context, b []byte) (x ast.Stmt, err error) {
	toks, err := Tokenize(b)
	if err != nil {
		return nil, errors.Wrap(err, "tokenize")
	}

	tlog.SpanFromContext(ctx).Printw("tokenized", "tokens", len(toks))

	s := &parser{toks: toks}

	x, err = s.stmt()
	if err != nil {
		return nil, err
	}

	if t := s.next(); t.Kind != EOF {
		return nil, s.unexpected(t, "; or end of file")
	}

	return x, nil
}

func (s *parser) stmt() (x ast.Stmt, err error) {
	x, err = s.single()
	if err != nil {
		return nil, err
	}

	for s.peek().Kind == Semicolon {
		t := s.next()

		y, err := s.single()
		if err != nil {
			return nil, err
		}

		x = &ast.Compound{Base: base(t), First: x, Second: y}
	}

	return x, nil
}

func (s *parser) single() (ast.Stmt, error) {
	t := s.next()

	switch t.Kind {
	case Ident:
		if _, err := s.expect(Assign); err != nil {
			return nil, err
		}

		v, err := s.expr()
		if err != nil {
			return nil, err
		}

		return &ast.Assign{Base: base(t), Name: t.Text, Value: v}, nil
	case Print:
		return s.print(t)
	case For:
		return s.forStmt(t)
	}

	return nil, s.unexpected(t, "statement")
}

func (s *parser) print(t Token) (x *ast.Print, err error) {
	x = &ast.Print{Base: base(t)}

	if _, err = s.expect(LParen); err != nil {
		return nil, err
	}

	for {
		e, err := s.expr()
		if err != nil {
			return nil, err
		}

		x.Args = append(x.Args, e)

		if s.peek().Kind != Comma {
			break
		}

		s.next()
	}

	if _, err = s.expect(RParen); err != nil {
		return nil, err
	}

	return x, nil
}

func (s *parser) forStmt(t Token) (x *ast.For, err error) {
	x = &ast.For{Base: base(t)}

	if _, err = s.expect(LParen); err != nil {
		return nil, err
	}

	if x.Init, err = s.single(); err != nil {
		return nil, err
	}

	if _, err = s.expect(Semicolon); err != nil {
		return nil, err
	}

	if x.Cond, err = s.cond(); err != nil {
		return nil, err
	}

	if _, err = s.expect(Semicolon); err != nil {
		return nil, err
	}

	if x.Step, err = s.single(); err != nil {
		return nil, err
	}

	if _, err = s.expect(RParen); err != nil {
		return nil, err
	}

	if _, err = s.expect(LCurl); err != nil {
		return nil, err
	}

	if x.Body, err = s.stmt(); err != nil {
		return nil, err
	}

	if _, err = s.expect(RCurl); err != nil {
		return nil, err
	}

	return x, nil
}

func (s *parser) cond() (*ast.Cmp, error) {
	l, err := s.expr()
	if err != nil {
		return nil, err
	}

	t := s.next()

	var op ast.CmpOp

	switch t.Kind {
	case Less:
		op = ast.Less
	case Greater:
		op = ast.Greater
	default:
		return nil, s.unexpected(t, "< or >")
	}

	r, err := s.expr()
	if err != nil {
		return nil, err
	}

	return &ast.Cmp{Base: base(t), Op: op, Left: l, Right: r}, nil
}

func (s *parser) expr() (ast.Expr, error) {
	t := s.next()

	var l ast.Expr

	switch t.Kind {
	case Ident:
		l = &ast.Ident{Base: base(t), Name: t.Text}
	case Num:
		l = &ast.Num{Base: base(t), Text: t.Text}
	case LParen:
		st, err := s.stmt()
		if err != nil {
			return nil, err
		}

		if _, err = s.expect(Comma); err != nil {
			return nil, err
		}

		e, err := s.expr()
		if err != nil {
			return nil, err
		}

		if _, err = s.expect(RParen); err != nil {
			return nil, err
		}

		return &ast.Eseq{Base: base(t), Stmt: st, Expr: e}, nil
	default:
		return nil, s.unexpected(t, "expression")
	}

	var op ast.Op

	switch s.peek().Kind {
	case Plus:
		op = ast.Add
	case Minus:
		op = ast.Sub
	case Star:
		op = ast.Mul
	case Slash:
		op = ast.Div
	default:
		return l, nil
	}

	ot := s.next()

	r, err := s.expr()
	if err != nil {
		return nil, err
	}

	return &ast.BinOp{Base: base(ot), Op: op, Left: l, Right: r}, nil
}

func (s *parser) peek() Token {
	return s.toks[s.i]
}

func (s *parser) next() Token {
	t := s.toks[s.i]

	s.prev, s.cur = s.cur, t.Kind

	if t.Kind != EOF {
		s.i++
	}

	return t
}

func (s *parser) expect(k Kind) (Token, error) {
	t := s.next()

	if t.Kind != k {
		return t, s.unexpected(t, fmt.Sprintf("%q", k.String()))
	}

	return t, nil
}

func (s *parser) unexpected(t Token, want string) error {
	msg := fmt.Sprintf("unexpected %v, expected %s", t, want)

	switch {
	case t.Kind == EOF && s.prev == Semicolon:
		msg += ": statement has unneeded semicolon at end of program or for-loop?"
	case t.Kind == RCurl && (s.prev == Semicolon || s.prev == LCurl):
		msg += ": empty for-block or unneeded semicolon?"
	}

	return &SyntaxError{Line: t.Line, Token: t, Msg: msg}
}

func base(t Token) ast.Base {
	return ast.Base{Line: t.Line}
}
