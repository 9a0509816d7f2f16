package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kr/pretty"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/slp/compiler"
	"github.com/slowlang/slp/compiler/back"
	"github.com/slowlang/slp/compiler/format"
	"github.com/slowlang/slp/compiler/front"
)

func main() {
	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "print tokens of source files",
		Action:      tokensAct,
		Args:        cli.Args{},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "print abstract syntax tree",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	fmtCmd := &cli.Command{
		Name:        "fmt",
		Description: "print source files in canonical form",
		Action:      fmtAct,
		Args:        cli.Args{},
	}

	irCmd := &cli.Command{
		Name:        "ir",
		Description: "print pseudo assembly before register allocation",
		Action:      irAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile to MIPS assembly",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("regs,k", back.MaxRegs, "registers available for variables ($s0..)"),
			cli.NewFlag("output,o", "", "output file, stdout if empty"),
			cli.NewFlag("conservative-jumps", false, "let unconditional jumps fall through to the next instruction"),
		},
	}

	app := &cli.Command{
		Name:        "slp",
		Description: "slp compiles straight-line programs to MIPS assembly",
		Commands: []*cli.Command{
			tokensCmd,
			parseCmd,
			fmtCmd,
			irCmd,
			compileCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func tokensAct(c *cli.Command) (err error) {
	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		toks, err := front.Tokenize(text)
		for _, t := range toks {
			fmt.Printf("%4d  %v\n", t.Line, t)
		}

		if err != nil {
			return errors.Wrap(err, "tokenize %v", a)
		}
	}

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := newContext()

	for _, a := range c.Args {
		x, err := (&front.Parser{}).ParseFile(ctx, a)
		if err != nil {
			return failed(ctx, err, "parse", a)
		}

		_, _ = pretty.Println(x)
	}

	return nil
}

func fmtAct(c *cli.Command) (err error) {
	ctx := newContext()

	for _, a := range c.Args {
		x, err := (&front.Parser{}).ParseFile(ctx, a)
		if err != nil {
			return failed(ctx, err, "parse", a)
		}

		b, err := format.Source(ctx, nil, x)
		if err != nil {
			return failed(ctx, err, "format", a)
		}

		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func irAct(c *cli.Command) (err error) {
	ctx := newContext()

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		p, err := compiler.Lower(ctx, text)
		if err != nil {
			return failed(ctx, err, "lower", a)
		}

		_, err = os.Stdout.Write(format.Code(nil, p))
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := newContext()

	cfg := back.DefaultConfig()
	cfg.Regs = c.Int("regs")
	cfg.ConservativeJumps = c.Bool("conservative-jumps")

	out := c.String("output")
	if out != "" && len(c.Args) > 1 {
		return errors.New("--output with %d input files", len(c.Args))
	}

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a, cfg)
		if err != nil {
			return failed(ctx, err, "compile", a)
		}

		if out != "" {
			err = os.WriteFile(out, obj, 0o644)
			if err != nil {
				return errors.Wrap(err, "write output")
			}

			continue
		}

		fmt.Printf("%s", obj)
	}

	return nil
}

func newContext() context.Context {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	return ctx
}

func failed(ctx context.Context, err error, stage, file string) error {
	tlog.SpanFromContext(ctx).Printw(stage+" failed", "file", file, "err", err, "from", loc.Caller(1))

	return errors.Wrap(err, "%v %v", stage, file)
}
