package ledger

import (
	"github.com/robinvdvleuten/hyoubkp/ast"
	"golang.org/x/exp/slices"
)

// Factory accumulates the entries of one transaction. It implements Resolver
// for the TokenMapper it was created with.
//
// Only the first two account tokens of a sub-expression take part in
// resolution: the first is the credit side and the second the debit side.
// A sub-expression naming fewer tokens keeps the previous sub-expression's
// resolution for the missing side.
type Factory struct {
	mapper TokenMapper
	tx     *Transaction

	creditToken    string
	debitToken     string
	creditAccount  string
	debitAccount   string
	creditResolved bool
	debitResolved  bool

	// hints maps every declared hint to whether it has been checked.
	hints     map[string]bool
	hintOrder []string

	current    string
	hasCurrent bool
}

var _ Resolver = (*Factory)(nil)

// NewFactory creates a factory resolving tokens with mapper.
func NewFactory(mapper TokenMapper) *Factory {
	f := &Factory{mapper: mapper}
	f.reset()
	return f
}

func (f *Factory) reset() {
	*f = Factory{
		mapper: f.mapper,
		tx:     &Transaction{},
		hints:  make(map[string]bool),
	}
}

// SetAccount records the account the mapper resolved the current token to.
func (f *Factory) SetAccount(account string) {
	f.current = account
	f.hasCurrent = true
}

func (f *Factory) IsCredit() bool {
	return !f.creditResolved
}

func (f *Factory) IsDebit() bool {
	return f.creditResolved && !f.debitResolved
}

func (f *Factory) CheckHint(hint string) bool {
	if _, ok := f.hints[hint]; !ok {
		return false
	}
	f.hints[hint] = true
	return true
}

func (f *Factory) RemoveHint(hint string) {
	delete(f.hints, hint)
}

func (f *Factory) CheckCredit(tokens ...string) bool {
	return slices.Contains(tokens, f.creditToken)
}

func (f *Factory) CheckDebit(tokens ...string) bool {
	return slices.Contains(tokens, f.debitToken)
}

// CheckOpposite checks the credit token while the debit side is resolved and
// the debit token while the credit side is resolved. Outside of account
// resolution there is no opposite side and it returns false.
func (f *Factory) CheckOpposite(tokens ...string) bool {
	switch {
	case f.IsDebit():
		return f.CheckCredit(tokens...)
	case f.IsCredit():
		return f.CheckDebit(tokens...)
	default:
		return false
	}
}

// UnconsumedHints returns the declared hints no mapper call has checked yet,
// in declaration order.
func (f *Factory) UnconsumedHints() []string {
	var out []string
	for _, h := range f.hintOrder {
		if consumed, ok := f.hints[h]; ok && !consumed {
			out = append(out, h)
		}
	}
	return out
}

// SetExpr resolves the accounts of e and appends the entries of its legs.
//
// Hints declared on e stay visible to later sub-expressions of the same
// transaction. Declaring a hint again requires it to be checked again.
func (f *Factory) SetExpr(e *ast.Expr) {
	for _, h := range e.Hints {
		if _, seen := f.hints[h]; !seen {
			f.hintOrder = append(f.hintOrder, h)
		}
		f.hints[h] = false
	}

	if len(e.Accounts) > 0 {
		f.creditToken = e.Accounts[0]
		f.creditAccount, f.creditResolved = "", false
	}
	if len(e.Accounts) > 1 {
		f.debitToken = e.Accounts[1]
		f.debitAccount, f.debitResolved = "", false
	}

	if len(e.Accounts) > 0 {
		if account, ok := f.mapAccount(f.creditToken); ok {
			f.creditAccount, f.creditResolved = account, true
		}
	}
	if len(e.Accounts) > 1 {
		if account, ok := f.mapAccount(f.debitToken); ok {
			f.debitAccount, f.debitResolved = account, true
		}
	}

	for _, leg := range e.Trans {
		f.addLeg(leg)
	}
}

func (f *Factory) addLeg(leg *ast.ExprTrans) {
	tx := f.tx

	if len(leg.CashBacks) == 0 {
		if !f.debitResolved || !f.creditResolved {
			tx.HasBuildError = true
		}
	} else if !f.creditResolved {
		tx.HasBuildError = true
	}
	if !leg.IsValid() {
		tx.HasBuildError = true
	}

	for i := uint32(0); i < leg.Multiple; i++ {
		if !leg.IsCashbackOnly() {
			tx.DebitEntries = append(tx.DebitEntries, Entry{Account: f.debitOrFallback(), Amount: leg.PriceDebit})

			if len(leg.CreditChain) == 0 {
				tx.CreditEntries = append(tx.CreditEntries, Entry{Account: f.creditOrFallback(), Amount: leg.PriceDebit})
			} else {
				balance := leg.PriceDebit
				for _, step := range leg.CreditChain {
					var reward ast.Price
					switch step.Kind {
					case ast.Reward:
						reward = step.Amount
						balance = balance.Sub(reward)
					case ast.Credit:
						reward = balance.Sub(step.Amount)
						balance = step.Amount
					}
					tx.CreditEntries = append(tx.CreditEntries, Entry{Account: f.rewardAccount(), Amount: reward})
				}
				tx.CreditEntries = append(tx.CreditEntries, Entry{Account: f.creditOrFallback(), Amount: balance})
			}
		}

		for _, cb := range leg.CashBacks {
			tx.CreditEntries = append(tx.CreditEntries, Entry{Account: f.rewardAccount(), Amount: cb})
			tx.DebitEntries = append(tx.DebitEntries, Entry{Account: f.creditOrFallback(), Amount: cb})
		}
	}
}

// Build finalizes the transaction and resets the factory.
//
// A transaction without entries, or one leaving a declared hint unchecked,
// is flagged and receives a zero credit entry on the fallback account so it
// stands out for manual correction.
func (f *Factory) Build() *Transaction {
	tx := f.tx

	if (!tx.HasBuildError && len(f.UnconsumedHints()) > 0) || tx.IsEmpty() {
		tx.HasBuildError = true
		tx.CreditEntries = append(tx.CreditEntries, Entry{Account: f.mapper.FallbackAccount()})
	}

	f.reset()
	return tx
}

func (f *Factory) mapAccount(token string) (string, bool) {
	f.current, f.hasCurrent = "", false
	if !f.mapper.OnAccount(f, token) || !f.hasCurrent {
		return "", false
	}
	return f.current, true
}

func (f *Factory) rewardAccount() string {
	f.current, f.hasCurrent = "", false
	f.mapper.OnReward(f)
	if f.hasCurrent {
		return f.current
	}
	return f.mapper.FallbackAccount()
}

func (f *Factory) debitOrFallback() string {
	if f.debitResolved {
		return f.debitAccount
	}
	return f.mapper.FallbackAccount()
}

func (f *Factory) creditOrFallback() string {
	if f.creditResolved {
		return f.creditAccount
	}
	return f.mapper.FallbackAccount()
}
