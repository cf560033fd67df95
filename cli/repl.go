package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/hyoubkp"
	"github.com/robinvdvleuten/hyoubkp/ast"
	"github.com/robinvdvleuten/hyoubkp/datagen"
	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/tokmap"
)

type ReplCmd struct {
	Datagen string `short:"d" help:"Data generator (${datagens})." default:"table" enum:"str,gnucash,table"`
	Date    string `help:"Date of the transactions before the first .date directive (YYYY-MM-DD). Defaults to today." placeholder:"DATE"`
	Watch   bool   `short:"w" help:"Reload the rule document and its includes when they change. Needs the rule token mapper."`
}

func (cmd *ReplCmd) Run(ctx *kong.Context, globals *Globals) error {
	sess, err := globals.newSession(ctx.Stderr, "repl")
	if err != nil {
		return err
	}
	defer sess.report(ctx.Stderr)

	var opts []hyoubkp.Option
	if cmd.Date != "" {
		date, err := ast.ParseDate(cmd.Date)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		opts = append(opts, hyoubkp.WithDate(date))
	}

	gen, err := datagen.New(datagen.Kind(cmd.Datagen), ctx.Stdout)
	if err != nil {
		return err
	}

	var (
		mapper ledger.TokenMapper
		files  []string
		path   string
	)
	if cmd.Watch {
		path, err = globals.ruleFile()
		if err != nil {
			return err
		}
		mapper, files, err = tokmap.LoadRule(sess.ctx, path)
	} else {
		mapper, err = globals.mapper(sess.ctx)
	}
	if err != nil {
		renderError(ctx.Stderr, err, "", nil, errorFormatText)
		printError(ctx.Stderr, "failed to set up token mapper")
		return NewCommandError(exitFailure)
	}

	r := &repl{exec: hyoubkp.New(mapper, opts...), gen: gen}

	if cmd.Watch {
		watchCtx, cancel := context.WithCancel(sess.ctx)
		defer cancel()

		watcher, err := newRuleWatcher(path, files, func(m ledger.TokenMapper) {
			r.swap(m)
			printInfof(ctx.Stderr, "Reloaded %s", pathStyle.Render(path))
		})
		if err != nil {
			return err
		}
		go watcher.Run(watchCtx)
		printInfof(ctx.Stderr, "Watching %s", pathStyle.Render(path))
	}

	return r.loop(sess.ctx, os.Stdin, ctx.Stdout, ctx.Stderr, isTerminal())
}

// repl evaluates lines one at a time. The executor is swapped when the
// rule document is reloaded, so it is guarded by mu.
type repl struct {
	mu     sync.Mutex
	exec   *hyoubkp.Executor
	gen    datagen.Generator
	number uint32
}

// swap replaces the executor with one using mapper. The session date and
// numbering base carry over.
func (r *repl) swap(mapper ledger.TokenMapper) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exec = hyoubkp.New(mapper,
		hyoubkp.WithDate(r.exec.Date()),
		hyoubkp.WithNumBase(r.exec.NumBase()))
}

func (r *repl) execute(ctx context.Context, line string) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.Execute(ctx, line)
}

// loop reads lines from in until EOF. Errors are reported to errOut and do
// not end the loop.
func (r *repl) loop(ctx context.Context, in io.Reader, out, errOut io.Writer, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			_, _ = fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		tx, err := r.execute(ctx, line)
		if err != nil {
			renderError(errOut, err, "", []byte(line), errorFormatText)
			continue
		}
		if tx == nil {
			continue
		}

		if err := r.gen.Write(out, []*ledger.Transaction{tx}, r.number); err != nil {
			return err
		}
		r.number++
	}
}
