package cli

import (
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/hyoubkp"
	"github.com/robinvdvleuten/hyoubkp/ast"
	"github.com/robinvdvleuten/hyoubkp/datagen"
	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/output"
	"github.com/robinvdvleuten/hyoubkp/parser"
)

type RunCmd struct {
	Input                 FileOrStdin `short:"i" help:"Input file with one expression per line (use '-' or omit for stdin)." placeholder:"FILE"`
	Output                string      `short:"o" help:"Write transactions to this file instead of stdout." type:"path" placeholder:"FILE"`
	Force                 bool        `short:"f" help:"Overwrite the output file without asking."`
	Datagen               string      `short:"d" help:"Data generator (${datagens})." default:"str" enum:"str,gnucash,table" env:"HYOUBKP_DATAGEN"`
	Date                  string      `help:"Date of the transactions before the first .date directive (YYYY-MM-DD). Defaults to today." placeholder:"DATE"`
	OrigExpr              bool        `help:"Keep each expression line on its transaction."`
	ContinueOnSyntaxError bool        `short:"C" help:"Write a placeholder transaction for lines that fail to parse instead of stopping."`
	TreatAmbiguityAsError bool        `short:"A" help:"Fail with exit code 2 when a transaction is ambiguous instead of writing it."`
	Check                 bool        `help:"Report transactions whose debits and credits do not balance."`
	Summary               bool        `help:"Print per-account balances after the transactions."`
	ErrorFormat           string      `help:"Error output format (text, json)." default:"text" enum:"text,json"`
}

func (cmd *RunCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.Input.EnsureContents(); err != nil {
		return err
	}

	sess, err := globals.newSession(ctx.Stderr, "run "+filepath.Base(cmd.Input.Filename))
	if err != nil {
		return err
	}
	defer sess.report(ctx.Stderr)

	opts, err := cmd.executorOptions()
	if err != nil {
		return err
	}

	mapper, err := globals.mapper(sess.ctx)
	if err != nil {
		renderError(ctx.Stderr, err, "", nil, cmd.ErrorFormat)
		printError(ctx.Stderr, "failed to set up token mapper")
		return NewCommandError(exitFailure)
	}

	exec := hyoubkp.New(mapper, opts...)
	txs, err := exec.Run(sess.ctx, cmd.Input.Lines())
	if err != nil {
		renderError(ctx.Stderr, err, cmd.Input.Filename, cmd.Input.Contents, cmd.ErrorFormat)

		var perr *parser.ParseError
		if stdErrors.As(err, &perr) {
			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, "syntax error")
		}
		return NewCommandError(exitFailure)
	}

	if cmd.TreatAmbiguityAsError {
		if flagged := flaggedTransactions(txs); len(flagged) > 0 {
			for _, tx := range flagged {
				printWarning(ctx.Stderr, "ambiguous transaction: "+strings.TrimSpace(tx.Description))
			}
			printError(ctx.Stderr, fmt.Sprintf("%d ambiguous transaction(s)", len(flagged)))
			return NewCommandError(exitAmbiguity)
		}
	}

	if err := cmd.write(ctx, txs); err != nil {
		return err
	}

	if cmd.Summary {
		summary := ledger.NewSummary()
		for _, tx := range txs {
			summary.Add(tx)
		}
		_, _ = fmt.Fprintln(ctx.Stdout)
		writeSummary(ctx.Stdout, summary, output.NewStyles(ctx.Stdout))
	}

	if cmd.Check {
		return checkBalances(ctx.Stderr, txs)
	}

	return nil
}

func (cmd *RunCmd) executorOptions() ([]hyoubkp.Option, error) {
	var opts []hyoubkp.Option
	if cmd.Date != "" {
		date, err := ast.ParseDate(cmd.Date)
		if err != nil {
			return nil, fmt.Errorf("--date: %w", err)
		}
		opts = append(opts, hyoubkp.WithDate(date))
	}
	if cmd.OrigExpr {
		opts = append(opts, hyoubkp.WithOrigExpr())
	}
	if cmd.ContinueOnSyntaxError {
		opts = append(opts, hyoubkp.WithPlaceholders())
	}
	return opts, nil
}

// write renders txs with the selected generator to stdout or the output file.
func (cmd *RunCmd) write(ctx *kong.Context, txs []*ledger.Transaction) error {
	if cmd.Output == "" {
		gen, err := datagen.New(datagen.Kind(cmd.Datagen), ctx.Stdout)
		if err != nil {
			return err
		}
		return gen.Write(ctx.Stdout, txs, 0)
	}

	if _, err := os.Stat(cmd.Output); err == nil && !cmd.Force {
		overwrite, err := promptYesNo(fmt.Sprintf("%s already exists. Overwrite it?", cmd.Output))
		if err != nil {
			return err
		}
		if !overwrite {
			printError(ctx.Stderr, fmt.Sprintf("%s already exists, use --force to overwrite it", cmd.Output))
			return NewCommandError(exitFailure)
		}
	}

	f, err := os.Create(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	gen, err := datagen.New(datagen.Kind(cmd.Datagen), f)
	if err != nil {
		return err
	}
	if err := gen.Write(f, txs, 0); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	printSuccess(ctx.Stderr, fmt.Sprintf("Wrote %d transaction(s) to %s", len(txs), pathStyle.Render(cmd.Output)))
	return nil
}

func flaggedTransactions(txs []*ledger.Transaction) []*ledger.Transaction {
	var flagged []*ledger.Transaction
	for _, tx := range txs {
		if tx.HasBuildError {
			flagged = append(flagged, tx)
		}
	}
	return flagged
}

// checkBalances reports every transaction whose entries do not sum to zero.
func checkBalances(w io.Writer, txs []*ledger.Transaction) error {
	var unbalanced int
	for i, tx := range txs {
		if tx.IsBalanced() {
			continue
		}
		unbalanced++
		printWarning(w, fmt.Sprintf("transaction %d (%s) is off by %s", i+1, tx.Date, tx.Imbalance().Decimal().StringFixed(2)))
	}

	if unbalanced > 0 {
		printError(w, fmt.Sprintf("%d unbalanced transaction(s)", unbalanced))
		return NewCommandError(exitFailure)
	}
	printSuccess(w, "All transactions balance")
	return nil
}
