package rules

import (
	"github.com/robinvdvleuten/hyoubkp/ledger"
)

// Mapper is a ledger.TokenMapper backed by a compiled rule document.
type Mapper struct {
	rule *CookedRule
}

var _ ledger.TokenMapper = (*Mapper)(nil)

// NewMapper creates a mapper for rule.
func NewMapper(rule *CookedRule) *Mapper {
	return &Mapper{rule: rule}
}

// Rule returns the compiled rule the mapper matches against.
func (m *Mapper) Rule() *CookedRule {
	return m.rule
}

func (m *Mapper) AccountTokens() []string {
	return m.rule.Accounts
}

func (m *Mapper) HintTokens() []string {
	return m.rule.Hints
}

func (m *Mapper) FallbackAccount() string {
	return m.rule.Fallback
}

func (m *Mapper) SupportsOption(opt ledger.Option) bool {
	return opt == ledger.OptionRuleFile
}

// OnAccount matches token against its entries in the main ruleset.
func (m *Mapper) OnAccount(r ledger.Resolver, token string) bool {
	entries, ok := m.rule.Main[token]
	if !ok {
		return false
	}
	return Match(r, entries)
}

// OnReward matches the reward ruleset and falls back to the fallback account.
func (m *Mapper) OnReward(r ledger.Resolver) {
	if !Match(r, m.rule.Reward) {
		r.SetAccount(m.rule.Fallback)
	}
}

// Match evaluates entries in order and sets the account of the first entry
// that matches. Hints are checked one by one, so hints of an entry that fails
// on a later hint are still marked consumed.
func Match(r ledger.Resolver, entries []CookedEntry) bool {
next:
	for _, e := range entries {
		switch e.Side {
		case DebitSide:
			if !r.IsDebit() {
				continue
			}
		case CreditSide:
			if !r.IsCredit() {
				continue
			}
		}

		switch e.Target {
		case CheckDebit:
			if !r.CheckDebit(e.CheckList...) {
				continue
			}
		case CheckCredit:
			if !r.CheckCredit(e.CheckList...) {
				continue
			}
		case CheckOpposite:
			if !r.CheckOpposite(e.CheckList...) {
				continue
			}
		}

		for _, hint := range e.Hints {
			if !r.CheckHint(hint) {
				continue next
			}
		}

		r.SetAccount(e.Account)
		return true
	}

	return false
}
