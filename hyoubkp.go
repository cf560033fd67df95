// Package hyoubkp turns shorthand bookkeeping lines such as "工行农行 20-5"
// into double-entry transactions.
//
// An Executor owns a parser built from the token mapper's tokens and keeps the
// session state set by directive lines:
//
//	.date 2024-03-01    fixes the date of the following transactions
//	.num 100            sets the numbering base of the following transactions
//
// Every other non-blank line is an expression:
//
//	exec := hyoubkp.New(tokmap.NewExample())
//	tx, err := exec.Execute(ctx, "工行农行 20-5 '午饭")
package hyoubkp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/hyoubkp/ast"
	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/logging"
	"github.com/robinvdvleuten/hyoubkp/parser"
	"github.com/robinvdvleuten/hyoubkp/telemetry"
	"go.uber.org/zap"
)

var (
	// ErrUnknownDirective is returned for directive lines naming no known directive.
	ErrUnknownDirective = errors.New("unknown directive")
	// ErrInvalidDirective is returned when a directive's argument can not be parsed.
	ErrInvalidDirective = errors.New("invalid directive argument")
)

// Executor parses expression lines into transactions.
type Executor struct {
	mapper ledger.TokenMapper
	parser *parser.Parser

	date         ast.Date
	numBase      uint32
	origExpr     bool
	placeholders bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithDate sets the initial session date. It defaults to today.
func WithDate(date ast.Date) Option {
	return func(e *Executor) {
		e.date = date
	}
}

// WithNumBase sets the initial numbering base.
func WithNumBase(n uint32) Option {
	return func(e *Executor) {
		e.numBase = n
	}
}

// WithOrigExpr keeps the raw expression text on every transaction.
func WithOrigExpr() Option {
	return func(e *Executor) {
		e.origExpr = true
	}
}

// WithPlaceholders makes Run replace lines that fail to parse with a
// Placeholder transaction instead of stopping.
func WithPlaceholders() Option {
	return func(e *Executor) {
		e.placeholders = true
	}
}

// New creates an Executor resolving accounts with mapper.
func New(mapper ledger.TokenMapper, opts ...Option) *Executor {
	e := &Executor{
		mapper: mapper,
		parser: parser.New(mapper.AccountTokens(), mapper.HintTokens()),
		date:   ast.Today(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mapper returns the token mapper the executor resolves accounts with.
func (e *Executor) Mapper() ledger.TokenMapper {
	return e.mapper
}

// Parser returns the parser built from the mapper's tokens.
func (e *Executor) Parser() *parser.Parser {
	return e.parser
}

// Date returns the current session date.
func (e *Executor) Date() ast.Date {
	return e.date
}

// NumBase returns the current numbering base.
func (e *Executor) NumBase() uint32 {
	return e.numBase
}

// IsDirective reports whether line is a directive line.
func IsDirective(line string) bool {
	return strings.HasPrefix(line, ".")
}

// Execute handles one input line. Blank lines and directives yield no
// transaction.
func (e *Executor) Execute(ctx context.Context, line string) (*ledger.Transaction, error) {
	switch {
	case strings.TrimSpace(line) == "":
		return nil, nil
	case IsDirective(line):
		return nil, e.ParseDirective(ctx, line)
	default:
		return e.ParseExpr(ctx, line)
	}
}

// ParseDirective applies a directive line to the session.
func (e *Executor) ParseDirective(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "."), " ")
	arg = strings.TrimSpace(arg)
	logger := logging.FromContext(ctx)

	switch name {
	case "date":
		date, err := ast.ParseDate(arg)
		if err != nil {
			return fmt.Errorf("%w: .date: %w", ErrInvalidDirective, err)
		}
		e.date = date
		logger.Debug("session date changed", zap.Stringer("date", date))
	case "num":
		n, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: .num: %w", ErrInvalidDirective, err)
		}
		e.numBase = uint32(n)
		logger.Debug("numbering base changed", zap.Uint32("num_base", e.numBase))
	default:
		return fmt.Errorf("%w %q", ErrUnknownDirective, "."+name)
	}
	return nil
}

// ParseExpr parses one expression line into a transaction.
//
// A line that parses but leaves an account unresolved or a hint unused still
// yields a transaction, flagged with HasBuildError and described as
// "<comment> FIXME:[<line>]".
func (e *Executor) ParseExpr(ctx context.Context, line string) (*ledger.Transaction, error) {
	cexpr, err := e.parser.Parse(line)
	if err != nil {
		return nil, err
	}
	if len(cexpr.Exprs) == 0 && cexpr.Comment == nil {
		var first rune
		for _, ch := range line {
			first = ch
			break
		}
		return nil, parser.NewParseError(line, first, 0, "expression can not be parsed")
	}

	factory := ledger.NewFactory(e.mapper)
	for _, expr := range cexpr.Exprs {
		factory.SetExpr(expr)
	}
	tx := factory.Build()

	var comment string
	if cexpr.Comment != nil {
		comment = *cexpr.Comment
	}
	e.stamp(tx, line, comment)

	if tx.HasBuildError {
		logging.FromContext(ctx).Warn("ambiguous transaction", zap.String("line", line))
	}
	return tx, nil
}

// Placeholder returns the flagged transaction standing in for a line that
// could not be parsed: a zero credit entry on the fallback account.
func (e *Executor) Placeholder(line string) *ledger.Transaction {
	tx := &ledger.Transaction{
		HasBuildError: true,
		CreditEntries: []ledger.Entry{{Account: e.mapper.FallbackAccount()}},
	}
	e.stamp(tx, line, "")
	return tx
}

func (e *Executor) stamp(tx *ledger.Transaction, line, comment string) {
	tx.Date = e.date
	tx.NumBase = e.numBase
	if e.origExpr {
		tx.OrigExpr = line
	}

	tx.Description = comment
	if tx.HasBuildError {
		tx.Description += " FIXME:[" + line + "]"
	}
}

// Run executes every line and collects the produced transactions. It stops
// at the first error, which is located at its line number.
//
// With WithPlaceholders, a parse error is logged and the line yields a
// placeholder transaction instead.
//
// The lines, directives, transactions and flagged counters of the telemetry
// collector in ctx are updated as lines are processed.
func (e *Executor) Run(ctx context.Context, lines []string) ([]*ledger.Transaction, error) {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start("process input")
	defer timer.End()

	txs := make([]*ledger.Transaction, 0, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return txs, err
		}
		collector.Add("lines", 1)
		tx, err := e.Execute(ctx, line)
		if err != nil {
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				return txs, fmt.Errorf("line %d: %w", i+1, err)
			}
			located := perr.At("", i+1)
			if !e.placeholders {
				return txs, located
			}
			logging.FromContext(ctx).Warn("skipping syntax error", zap.Error(located))
			collector.Add("syntax errors", 1)
			tx = e.Placeholder(line)
		}
		if IsDirective(line) {
			collector.Add("directives", 1)
		}
		if tx != nil {
			collector.Add("transactions", 1)
			if tx.HasBuildError {
				collector.Add("flagged", 1)
			}
			txs = append(txs, tx)
		}
	}
	return txs, nil
}
