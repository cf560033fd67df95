package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRuleset is wrapped when a required or imported ruleset does not exist.
	ErrMissingRuleset = errors.New("ruleset is required")
	// ErrImportCycle is wrapped when rulesets import each other in a loop.
	ErrImportCycle = errors.New("import cycle")
	// ErrUnknownTag is wrapped when a check list references an undeclared tag.
	ErrUnknownTag = errors.New("unknown tag")
	// ErrConflictingChecks is wrapped when an entry sets more than one of
	// opposite, debit and credit.
	ErrConflictingChecks = errors.New("conflicting account checks")
	// ErrMissingAccount is wrapped when an entry has neither account nor import.
	ErrMissingAccount = errors.New("missing account")
	// ErrMissingFallback is wrapped when the document declares no fallback account.
	ErrMissingFallback = errors.New("missing fallback account")
)

// RuleError reports why a rule document could not be compiled.
//
// Index is the position of the offending entry within the ruleset after
// imports have been expanded, or -1 when the error concerns the ruleset or
// document as a whole.
type RuleError struct {
	Ruleset    string
	Index      int
	Message    string
	Underlying error
}

func (e *RuleError) Error() string {
	switch {
	case e.Ruleset == "":
		return e.Message
	case e.Index < 0:
		return fmt.Sprintf("ruleset %q: %s", e.Ruleset, e.Message)
	default:
		return fmt.Sprintf("ruleset %q entry %d: %s", e.Ruleset, e.Index, e.Message)
	}
}

func (e *RuleError) Unwrap() error {
	return e.Underlying
}
