package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/robinvdvleuten/hyoubkp/datagen"
	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/logging"
	"github.com/robinvdvleuten/hyoubkp/output"
	"github.com/robinvdvleuten/hyoubkp/telemetry"
	"github.com/robinvdvleuten/hyoubkp/tokmap"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	EnvFile            string   `help:"Load environment variables from this file instead of .env." placeholder:"FILE"`
	LogLevel           string   `help:"Log level (debug, info, warn, error)." default:"warn" env:"HYOUBKP_LOG_LEVEL"`
	Timings            bool     `help:"Show timing telemetry for operations." env:"HYOUBKP_TIMINGS"`
	TokenMapper        string   `short:"t" help:"Token mapper (${mappers})." default:"example" env:"HYOUBKP_TOKEN_MAPPER"`
	TokenMapperOptions []string `short:"T" help:"Token mapper option as key=value, see the options command." placeholder:"KEY=VALUE" env:"HYOUBKP_TOKEN_MAPPER_OPTIONS"`
}

type Commands struct {
	Globals

	Run     RunCmd     `cmd:"" help:"Turn expression lines into transactions."`
	Repl    ReplCmd    `cmd:"" help:"Read expression lines interactively."`
	Doctor  DoctorCmd  `cmd:"" help:"Doctor utilities for debugging expressions and token mappers."`
	Options OptionsCmd `cmd:"" help:"List the token mapper options."`
}

// Vars are the kong interpolation variables used by the command help.
func Vars() map[string]string {
	return map[string]string{
		"mappers":  joinKinds(tokmap.Kinds()),
		"datagens": joinKinds(datagen.Kinds()),
	}
}

func joinKinds[K ~string](kinds []K) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// session is the per-command runtime built from the global flags.
type session struct {
	ctx       context.Context
	collector *telemetry.TimingCollector
	timer     telemetry.Timer
}

// newSession sets up logging to stderr and, with --timings, a telemetry
// collector whose root timer is named name.
func (g *Globals) newSession(stderr io.Writer, name string) (*session, error) {
	logger, err := logging.New(g.LogLevel, stderr)
	if err != nil {
		return nil, err
	}

	s := &session{ctx: logging.WithLogger(context.Background(), logger)}
	if g.Timings {
		s.collector = telemetry.NewTimingCollector()
		s.ctx = telemetry.WithCollector(s.ctx, s.collector)
		s.timer = s.collector.Start(name)
	}
	return s, nil
}

// report ends the root timer and writes the telemetry report. It does
// nothing without --timings.
func (s *session) report(w io.Writer) {
	if s.collector == nil {
		return
	}
	s.timer.End()
	_, _ = fmt.Fprintln(w)
	s.collector.Report(w, output.NewStyles(w))
	s.collector = nil
}

// mapper builds the token mapper selected by the global flags.
func (g *Globals) mapper(ctx context.Context) (ledger.TokenMapper, error) {
	opts, err := tokmap.ParseOptions(g.TokenMapperOptions)
	if err != nil {
		return nil, err
	}
	return tokmap.New(ctx, tokmap.Kind(g.TokenMapper), opts)
}

// ruleFile returns the rule-file option of the rule token mapper.
func (g *Globals) ruleFile() (string, error) {
	if tokmap.Kind(g.TokenMapper) != tokmap.KindRule {
		return "", fmt.Errorf("--watch needs the %q token mapper", tokmap.KindRule)
	}
	opts, err := tokmap.ParseOptions(g.TokenMapperOptions)
	if err != nil {
		return "", err
	}
	path := opts[ledger.OptionRuleFile]
	if path == "" {
		return "", fmt.Errorf("%w: %s", tokmap.ErrMissingOption, ledger.OptionRuleFile.Description())
	}
	return path, nil
}
