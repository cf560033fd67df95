package ledger

// Resolver is the view of a Factory handed to a TokenMapper while it resolves
// one token. The mapper inspects the current sub-expression through the Check
// methods and reports its answer with SetAccount.
type Resolver interface {
	// IsCredit reports whether the credit side is being resolved.
	IsCredit() bool
	// IsDebit reports whether the debit side is being resolved.
	IsDebit() bool

	// CheckHint reports whether hint was declared and marks it consumed.
	CheckHint(hint string) bool
	// RemoveHint forgets a declared hint so it no longer needs consuming.
	RemoveHint(hint string)

	// CheckCredit reports whether the raw credit token is one of tokens.
	CheckCredit(tokens ...string) bool
	// CheckDebit reports whether the raw debit token is one of tokens.
	CheckDebit(tokens ...string) bool
	// CheckOpposite checks the raw token of the side not being resolved.
	CheckOpposite(tokens ...string) bool

	SetAccount(account string)
}

// TokenMapper resolves account tokens into canonical account names.
type TokenMapper interface {
	// AccountTokens lists the account tokens recognized by the parser.
	AccountTokens() []string
	// HintTokens lists the hint tokens recognized by the parser.
	HintTokens() []string
	// FallbackAccount names the account used when resolution fails.
	FallbackAccount() string

	// OnAccount resolves token for the side reported by r. It returns false
	// when the token is unknown to the mapper.
	OnAccount(r Resolver, token string) bool
	// OnReward resolves the account receiving a reward or cashback.
	OnReward(r Resolver)

	// SupportsOption reports whether the mapper accepts opt.
	SupportsOption(opt Option) bool
}

// Option names a configuration option a TokenMapper may accept.
type Option string

const (
	// OptionRuleFile points a mapper at a rule document.
	OptionRuleFile Option = "rule-file"
)

// Options lists every known option.
func Options() []Option {
	return []Option{OptionRuleFile}
}

// Description returns a one-line usage description of the option.
func (o Option) Description() string {
	switch o {
	case OptionRuleFile:
		return "rule-file=<file path> - specify rule files for tokmap"
	default:
		return string(o) + " - unknown option"
	}
}

// IsKnown reports whether o is one of Options.
func (o Option) IsKnown() bool {
	for _, known := range Options() {
		if o == known {
			return true
		}
	}
	return false
}
