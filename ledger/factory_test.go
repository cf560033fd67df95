package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/hyoubkp/ast"
)

const (
	icbc     = "资产:银行:ICBC 工商银行"
	abc      = "资产:银行:ABC 农业银行"
	coupon   = "收入:优惠券变现"
	interest = "收入:利息"
	fallback = "不平衡的-CNY"
)

// testMapper resolves tokens from a fixed table and consults the "利息" hint
// when resolving rewards.
type testMapper struct {
	accounts map[string]string
	calls    []string
}

func newTestMapper() *testMapper {
	return &testMapper{accounts: map[string]string{
		"工行": icbc,
		"农行": abc,
	}}
}

func (m *testMapper) AccountTokens() []string        { return []string{"工行", "农行", "邮储"} }
func (m *testMapper) HintTokens() []string           { return []string{"利息", "还款"} }
func (m *testMapper) FallbackAccount() string        { return fallback }
func (m *testMapper) SupportsOption(opt Option) bool { return false }

func (m *testMapper) OnAccount(r Resolver, token string) bool {
	side := "debit"
	if r.IsCredit() {
		side = "credit"
	}
	m.calls = append(m.calls, side+":"+token)

	account, ok := m.accounts[token]
	if !ok {
		return false
	}
	r.SetAccount(account)
	return true
}

func (m *testMapper) OnReward(r Resolver) {
	r.SetAccount(coupon)
	if r.CheckHint("利息") {
		r.SetAccount(interest)
	}
}

func TestFactory(t *testing.T) {
	tests := []struct {
		name     string
		exprs    []*ast.Expr
		debits   []Entry
		credits  []Entry
		hasError bool
	}{
		{
			name:    "Simple",
			exprs:   []*ast.Expr{expr([]string{"工行", "农行"}, nil, leg(2000))},
			debits:  []Entry{{abc, 2000}},
			credits: []Entry{{icbc, 2000}},
		},
		{
			name:    "Reward",
			exprs:   []*ast.Expr{expr([]string{"工行", "农行"}, nil, leg(2000, reward(500)))},
			debits:  []Entry{{abc, 2000}},
			credits: []Entry{{coupon, 500}, {icbc, 1500}},
		},
		{
			name:    "CreditChain",
			exprs:   []*ast.Expr{expr([]string{"工行", "农行"}, nil, leg(1000, credit(900), credit(800)))},
			debits:  []Entry{{abc, 1000}},
			credits: []Entry{{coupon, 100}, {coupon, 100}, {icbc, 800}},
		},
		{
			name:    "MixedChain",
			exprs:   []*ast.Expr{expr([]string{"工行", "农行"}, nil, leg(5000, credit(4500), reward(1000)))},
			debits:  []Entry{{abc, 5000}},
			credits: []Entry{{coupon, 500}, {coupon, 1000}, {icbc, 3500}},
		},
		{
			name:    "Multiple",
			exprs:   []*ast.Expr{expr([]string{"工行", "农行"}, nil, times(leg(1200, reward(200)), 3))},
			debits:  []Entry{{abc, 1200}, {abc, 1200}, {abc, 1200}},
			credits: []Entry{{coupon, 200}, {icbc, 1000}, {coupon, 200}, {icbc, 1000}, {coupon, 200}, {icbc, 1000}},
		},
		{
			name:    "Cashback",
			exprs:   []*ast.Expr{expr([]string{"工行", "农行"}, nil, cashback(leg(2000), 300))},
			debits:  []Entry{{abc, 2000}, {icbc, 300}},
			credits: []Entry{{icbc, 2000}, {coupon, 300}},
		},
		{
			name:    "MultipleCashback",
			exprs:   []*ast.Expr{expr([]string{"工行", "农行"}, nil, times(cashback(leg(2000), 300), 2))},
			debits:  []Entry{{abc, 2000}, {icbc, 300}, {abc, 2000}, {icbc, 300}},
			credits: []Entry{{icbc, 2000}, {coupon, 300}, {icbc, 2000}, {coupon, 300}},
		},
		{
			name:    "CashbackOnlyNeedsCreditSide",
			exprs:   []*ast.Expr{expr([]string{"工行"}, nil, cashback(leg(0), 300))},
			debits:  []Entry{{icbc, 300}},
			credits: []Entry{{coupon, 300}},
		},
		{
			name:     "UnresolvedDebitFallsBack",
			exprs:    []*ast.Expr{expr([]string{"工行", "邮储"}, nil, leg(2000))},
			debits:   []Entry{{fallback, 2000}},
			credits:  []Entry{{icbc, 2000}},
			hasError: true,
		},
		{
			name:     "MissingDebitToken",
			exprs:    []*ast.Expr{expr([]string{"工行"}, nil, leg(2000))},
			debits:   []Entry{{fallback, 2000}},
			credits:  []Entry{{icbc, 2000}},
			hasError: true,
		},
		{
			name:    "ConsumedHint",
			exprs:   []*ast.Expr{expr([]string{"工行", "农行"}, []string{"利息"}, leg(2000, reward(10)))},
			debits:  []Entry{{abc, 2000}},
			credits: []Entry{{interest, 10}, {icbc, 1990}},
		},
		{
			name:     "UnconsumedHint",
			exprs:    []*ast.Expr{expr([]string{"工行", "农行"}, []string{"还款"}, leg(2000))},
			debits:   []Entry{{abc, 2000}},
			credits:  []Entry{{icbc, 2000}, {fallback, 0}},
			hasError: true,
		},
		{
			name: "HintVisibleToLaterSubExpression",
			exprs: []*ast.Expr{
				expr([]string{"工行", "农行"}, []string{"利息"}, leg(2000)),
				expr([]string{"工行", "农行"}, nil, leg(100, reward(100))),
			},
			debits:  []Entry{{abc, 2000}, {abc, 100}},
			credits: []Entry{{icbc, 2000}, {interest, 100}, {icbc, 0}},
		},
		{
			name:     "NoEntries",
			exprs:    []*ast.Expr{expr([]string{"工行", "农行"}, nil)},
			credits:  []Entry{{fallback, 0}},
			hasError: true,
		},
		{
			name:     "InvalidLegIsFlagged",
			exprs:    []*ast.Expr{expr([]string{"工行", "农行"}, nil, leg(1000, reward(1500)))},
			debits:   []Entry{{abc, 1000}},
			credits:  []Entry{{coupon, 1500}, {icbc, -500}},
			hasError: true,
		},
		{
			name: "MissingSideKeepsPreviousResolution",
			exprs: []*ast.Expr{
				expr([]string{"工行", "农行"}, nil, leg(2000)),
				expr([]string{"农行"}, nil, leg(500)),
			},
			debits:  []Entry{{abc, 2000}, {abc, 500}},
			credits: []Entry{{icbc, 2000}, {abc, 500}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := NewFactory(newTestMapper())
			for _, e := range test.exprs {
				f.SetExpr(e)
			}
			tx := f.Build()

			assert.Equal(t, test.debits, tx.DebitEntries)
			assert.Equal(t, test.credits, tx.CreditEntries)
			assert.Equal(t, test.hasError, tx.HasBuildError)
		})
	}
}

func TestFactorySides(t *testing.T) {
	m := newTestMapper()
	f := NewFactory(m)

	f.SetExpr(expr([]string{"工行", "农行"}, nil, leg(100)))
	assert.Equal(t, []string{"credit:工行", "debit:农行"}, m.calls)

	// Once both sides resolved there is no opposite side.
	assert.False(t, f.IsCredit())
	assert.False(t, f.IsDebit())
	assert.False(t, f.CheckOpposite("工行", "农行"))
	assert.True(t, f.CheckCredit("中行", "工行"))
	assert.True(t, f.CheckDebit("农行"))
	assert.False(t, f.CheckDebit("工行"))
}

func TestFactoryUnresolvedCreditKeepsCreditSide(t *testing.T) {
	m := newTestMapper()
	f := NewFactory(m)

	f.SetExpr(expr([]string{"邮储", "工行"}, nil, leg(100)))
	tx := f.Build()

	// The credit side failed, so the second token is still resolved while
	// the factory reports the credit side.
	assert.Equal(t, []string{"credit:邮储", "credit:工行"}, m.calls)
	assert.Equal(t, []Entry{{icbc, 100}}, tx.DebitEntries)
	assert.Equal(t, []Entry{{fallback, 100}}, tx.CreditEntries)
	assert.True(t, tx.HasBuildError)
}

func TestFactoryCheckOpposite(t *testing.T) {
	var seen []bool
	m := &oppositeMapper{seen: &seen}
	f := NewFactory(m)

	f.SetExpr(expr([]string{"工行", "农行"}, nil, leg(100)))

	// Resolving 工行 (credit) looks at the debit token, resolving 农行
	// (debit) looks at the credit token.
	assert.Equal(t, []bool{true, true}, seen)
}

type oppositeMapper struct {
	testMapper
	seen *[]bool
}

func (m *oppositeMapper) OnAccount(r Resolver, token string) bool {
	if r.IsCredit() {
		*m.seen = append(*m.seen, r.CheckOpposite("农行"))
	} else {
		*m.seen = append(*m.seen, r.CheckOpposite("工行"))
	}
	r.SetAccount(token)
	return true
}

func TestFactoryHints(t *testing.T) {
	f := NewFactory(newTestMapper())
	f.SetExpr(expr([]string{"工行", "农行"}, []string{"还款", "利息"}, leg(100)))

	assert.Equal(t, []string{"还款", "利息"}, f.UnconsumedHints())
	assert.True(t, f.CheckHint("还款"))
	assert.False(t, f.CheckHint("信用卡"))
	assert.Equal(t, []string{"利息"}, f.UnconsumedHints())

	f.RemoveHint("利息")
	assert.Equal(t, 0, len(f.UnconsumedHints()))

	tx := f.Build()
	assert.False(t, tx.HasBuildError)
}

func TestFactoryRedeclaredHintMustBeCheckedAgain(t *testing.T) {
	f := NewFactory(newTestMapper())
	f.SetExpr(expr([]string{"工行", "农行"}, []string{"利息"}, leg(100, reward(10))))
	assert.Equal(t, 0, len(f.UnconsumedHints()))

	f.SetExpr(expr([]string{"工行", "农行"}, []string{"利息"}, leg(100)))
	assert.Equal(t, []string{"利息"}, f.UnconsumedHints())
}

func TestFactoryCheckedHintStaysChecked(t *testing.T) {
	f := NewFactory(newTestMapper())
	f.SetExpr(expr([]string{"工行", "农行"}, []string{"利息"}, leg(100, reward(10))))
	f.SetExpr(expr([]string{"工行", "农行"}, nil, leg(100)))

	// A hint from an earlier sub-expression is still visible and keeps its
	// checked state.
	assert.Equal(t, 0, len(f.UnconsumedHints()))
	assert.True(t, f.CheckHint("利息"))
	assert.False(t, f.Build().HasBuildError)
}

func TestFactoryBuildResets(t *testing.T) {
	f := NewFactory(newTestMapper())
	f.SetExpr(expr([]string{"工行", "农行"}, []string{"还款"}, leg(100)))
	first := f.Build()
	assert.True(t, first.HasBuildError)

	f.SetExpr(expr([]string{"工行", "农行"}, nil, leg(100)))
	second := f.Build()
	assert.False(t, second.HasBuildError)
	assert.Equal(t, 2, len(first.CreditEntries), "first transaction is not touched")
}

func expr(accounts []string, hints []string, legs ...*ast.ExprTrans) *ast.Expr {
	return &ast.Expr{Accounts: accounts, Hints: hints, Trans: legs}
}

func leg(debit ast.Price, chain ...ast.CreditPrice) *ast.ExprTrans {
	return &ast.ExprTrans{PriceDebit: debit, CreditChain: chain, Multiple: 1}
}

func times(t *ast.ExprTrans, n uint32) *ast.ExprTrans {
	t.Multiple = n
	return t
}

func cashback(t *ast.ExprTrans, amounts ...ast.Price) *ast.ExprTrans {
	t.CashBacks = amounts
	return t
}

func reward(amount ast.Price) ast.CreditPrice {
	return ast.CreditPrice{Kind: ast.Reward, Amount: amount}
}

func credit(amount ast.Price) ast.CreditPrice {
	return ast.CreditPrice{Kind: ast.Credit, Amount: amount}
}
