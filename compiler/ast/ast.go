package ast

type (
	// Node is one of the Stmt or Expr types below.
	Node interface {
		node()
	}

	Stmt interface {
		Node
		stmt()
	}

	Expr interface {
		Node
		expr()
	}

	Base struct {
		Line int
	}

	// Compound is First; Second.
	Compound struct {
		Base `tlog:",embed"`

		First  Stmt
		Second Stmt
	}

	Assign struct {
		Base `tlog:",embed"`

		Name  string
		Value Expr
	}

	Print struct {
		Base `tlog:",embed"`

		Args []Expr
	}

	// For is for (Init; Cond; Step) { Body }.
	For struct {
		Base `tlog:",embed"`

		Init Stmt
		Cond *Cmp
		Step Stmt
		Body Stmt
	}

	Ident struct {
		Base `tlog:",embed"`

		Name string
	}

	Num struct {
		Base `tlog:",embed"`

		Text string
	}

	BinOp struct {
		Base `tlog:",embed"`

		Op    Op
		Left  Expr
		Right Expr
	}

	// Eseq evaluates Stmt and then Expr.
	Eseq struct {
		Base `tlog:",embed"`

		Stmt Stmt
		Expr Expr
	}

	Cmp struct {
		Base `tlog:",embed"`

		Op    CmpOp
		Left  Expr
		Right Expr
	}

	Op    byte
	CmpOp byte
)

const (
	Add Op = '+'
	Sub Op = '-'
	Mul Op = '*'
	Div Op = '/'

	Less    CmpOp = '<'
	Greater CmpOp = '>'
)

func (*Compound) node() {}
func (*Assign) node()   {}
func (*Print) node()    {}
func (*For) node()      {}
func (*Ident) node()    {}
func (*Num) node()      {}
func (*BinOp) node()    {}
func (*Eseq) node()     {}
func (*Cmp) node()      {}

func (*Compound) stmt() {}
func (*Assign) stmt()   {}
func (*Print) stmt()    {}
func (*For) stmt()      {}

func (*Ident) expr() {}
func (*Num) expr()   {}
func (*BinOp) expr() {}
func (*Eseq) expr()  {}
func (*Cmp) expr()   {}

func (op Op) String() string    { return string(op) }
func (op CmpOp) String() string { return string(op) }

// Flatten returns the statements of a Compound chain in order.
func Flatten(s Stmt) []Stmt {
	c, ok := s.(*Compound)
	if !ok {
		return []Stmt{s}
	}

	return append(Flatten(c.First), Flatten(c.Second)...)
}
