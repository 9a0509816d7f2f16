package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/slp/compiler/asm"
	"github.com/slowlang/slp/compiler/back"
	"github.com/slowlang/slp/compiler/format"
	"github.com/slowlang/slp/compiler/front"
)

func CompileFile(ctx context.Context, name string, cfg back.Config) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, cfg)
}

// Compile translates source text into MIPS assembly text.
func Compile(ctx context.Context, name string, text []byte, cfg back.Config) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name)
	defer tr.Finish("err", &err)

	p, err := Lower(ctx, text)
	if err != nil {
		return nil, err
	}

	res, err := back.New(cfg).Allocate(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "allocate")
	}

	tr.Printw("allocated", "vars", len(p.Vars), "spilled", len(res.Cells), "instrs", len(res.Prog.Code))

	obj, err = format.Asm(ctx, nil, res.Prog, res.Cells)
	if err != nil {
		return nil, errors.Wrap(err, "emit")
	}

	return obj, nil
}

// Lower parses text and generates code over variables, before register allocation.
func Lower(ctx context.Context, text []byte) (*asm.Prog, error) {
	x, err := (&front.Parser{}).ParseFileData(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	p, err := front.Generate(ctx, x)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	return p, nil
}
