// Package tokmap selects and configures the token mapper used to turn
// account tokens into ledger accounts.
//
// Two kinds are available: "example", the built-in mapper, and "rule", which
// compiles a YAML rule document given with the rule-file option:
//
//	opts, err := tokmap.ParseOptions([]string{"rule-file=rules.yaml"})
//	mapper, err := tokmap.New(ctx, tokmap.KindRule, opts)
package tokmap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/loader"
	"github.com/robinvdvleuten/hyoubkp/logging"
	"github.com/robinvdvleuten/hyoubkp/rules"
	"github.com/robinvdvleuten/hyoubkp/telemetry"
	"go.uber.org/zap"
)

var (
	ErrUnknownKind       = errors.New("unknown token mapper")
	ErrUnknownOption     = errors.New("unknown option")
	ErrUnsupportedOption = errors.New("unsupported option")
	ErrMissingOption     = errors.New("missing option")
	ErrMalformedOption   = errors.New("malformed option")
)

// Kind names a token mapper implementation.
type Kind string

const (
	KindExample Kind = "example"
	KindRule    Kind = "rule"
)

// Kinds lists every available kind.
func Kinds() []Kind {
	return []Kind{KindExample, KindRule}
}

// SupportsOption reports whether mappers of kind k accept opt.
func (k Kind) SupportsOption(opt ledger.Option) bool {
	switch k {
	case KindRule:
		return opt == ledger.OptionRuleFile
	default:
		return false
	}
}

// Options holds the values of configured options.
type Options map[ledger.Option]string

// ParseOption splits a "key=value" pair. Only known options are accepted.
func ParseOption(s string) (ledger.Option, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w %q, expected key=value", ErrMalformedOption, s)
	}

	opt := ledger.Option(strings.TrimSpace(key))
	if !opt.IsKnown() {
		return "", "", fmt.Errorf("%w %q", ErrUnknownOption, opt)
	}
	return opt, strings.TrimSpace(value), nil
}

// ParseOptions parses every pair of pairs. A later pair overrides an earlier
// one with the same key.
func ParseOptions(pairs []string) (Options, error) {
	opts := make(Options, len(pairs))
	for _, pair := range pairs {
		opt, value, err := ParseOption(pair)
		if err != nil {
			return nil, err
		}
		opts[opt] = value
	}
	return opts, nil
}

// OptionsDescription renders one line per known option.
func OptionsDescription() string {
	var sb strings.Builder
	for _, opt := range ledger.Options() {
		sb.WriteString(opt.Description())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// New creates a token mapper of the given kind. Options the kind does not
// support are rejected.
func New(ctx context.Context, kind Kind, opts Options) (ledger.TokenMapper, error) {
	for opt := range opts {
		if !kind.SupportsOption(opt) {
			return nil, fmt.Errorf("%w %q for token mapper %q", ErrUnsupportedOption, opt, kind)
		}
	}

	switch kind {
	case KindExample:
		return NewExample(), nil
	case KindRule:
		path, ok := opts[ledger.OptionRuleFile]
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: token mapper %q requires %s", ErrMissingOption, kind, ledger.OptionRuleFile.Description())
		}
		return NewRule(ctx, path)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// NewRule loads the rule document at path, following its includes, and
// compiles it into a mapper.
func NewRule(ctx context.Context, path string) (*rules.Mapper, error) {
	mapper, _, err := LoadRule(ctx, path)
	return mapper, err
}

// LoadRule is like NewRule but also returns the absolute paths of every
// document that was read, the root document first.
func LoadRule(ctx context.Context, path string) (*rules.Mapper, []string, error) {
	timer := telemetry.FromContext(ctx).Start("compile rules")
	defer timer.End()

	result, err := loader.New(loader.WithFollowIncludes()).Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	rule, err := rules.Compile(result.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	logging.FromContext(ctx).Debug("compiled rule document",
		zap.String("path", result.Root),
		zap.Strings("includes", result.Includes),
		zap.Int("accounts", len(rule.Accounts)),
		zap.Int("hints", len(rule.Hints)))

	files := append([]string{result.Root}, result.Includes...)
	return rules.NewMapper(rule), files, nil
}
