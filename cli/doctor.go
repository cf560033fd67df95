package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/hyoubkp"
)

// DoctorCmd provides doctor utilities for debugging expressions and token
// mappers.
type DoctorCmd struct {
	Parse  ParseCmd  `cmd:"" help:"Show the parsed expression tree of each input line."`
	Tokens TokensCmd `cmd:"" help:"Show the tokens registered by the token mapper."`
}

// ParseCmd dumps the expression tree of every expression line.
type ParseCmd struct {
	Input FileOrStdin `help:"Input file with one expression per line (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run executes the parse command. Lines that fail to parse are reported and
// skipped.
func (cmd *ParseCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.Input.EnsureContents(); err != nil {
		return err
	}

	sess, err := globals.newSession(ctx.Stderr, "doctor parse")
	if err != nil {
		return err
	}
	defer sess.report(ctx.Stderr)

	mapper, err := globals.mapper(sess.ctx)
	if err != nil {
		return err
	}
	p := hyoubkp.New(mapper).Parser()

	var failed int
	for i, line := range cmd.Input.Lines() {
		if strings.TrimSpace(line) == "" || hyoubkp.IsDirective(line) {
			continue
		}

		_, _ = fmt.Fprintf(ctx.Stdout, "%d: %s\n", i+1, line)
		cexpr, err := p.Parse(line)
		if err != nil {
			failed++
			renderError(ctx.Stdout, err, "", []byte(line), errorFormatText)
			continue
		}
		_, _ = fmt.Fprintln(ctx.Stdout, repr.String(cexpr, repr.Indent("  ")))
	}

	if failed > 0 {
		printError(ctx.Stderr, fmt.Sprintf("%d line(s) failed to parse", failed))
		return NewCommandError(exitFailure)
	}
	return nil
}

// TokensCmd lists the account and hint tokens of the configured mapper.
type TokensCmd struct{}

// Run executes the tokens command.
func (cmd *TokensCmd) Run(ctx *kong.Context, globals *Globals) error {
	sess, err := globals.newSession(ctx.Stderr, "doctor tokens")
	if err != nil {
		return err
	}
	defer sess.report(ctx.Stderr)

	mapper, err := globals.mapper(sess.ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(ctx.Stdout, "accounts: %s\n", strings.Join(mapper.AccountTokens(), " "))
	_, _ = fmt.Fprintf(ctx.Stdout, "hints:    %s\n", strings.Join(mapper.HintTokens(), " "))
	_, _ = fmt.Fprintf(ctx.Stdout, "fallback: %s\n", mapper.FallbackAccount())
	return nil
}
