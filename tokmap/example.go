package tokmap

import (
	"github.com/robinvdvleuten/hyoubkp/ledger"
)

// Example is the built-in token mapper: a handful of banks and two expense
// categories. It documents what a hand-written mapper looks like.
type Example struct {
	bankTokens    []string
	expenseTokens []string
}

var _ ledger.TokenMapper = (*Example)(nil)

// NewExample creates the built-in example mapper.
func NewExample() *Example {
	return &Example{
		bankTokens:    []string{"工行", "农行", "中行", "建行", "交行", "邮储"},
		expenseTokens: []string{"用餐", "杂项"},
	}
}

func (m *Example) AccountTokens() []string {
	tokens := make([]string, 0, len(m.bankTokens)+len(m.expenseTokens))
	tokens = append(tokens, m.bankTokens...)
	return append(tokens, m.expenseTokens...)
}

func (m *Example) HintTokens() []string {
	return []string{"还款", "未出账单", "利息", "信用卡", "储蓄卡"}
}

func (m *Example) FallbackAccount() string {
	return "不平衡的-CNY"
}

// SupportsOption always reports false; the example mapper takes no options.
func (m *Example) SupportsOption(ledger.Option) bool {
	return false
}

func (m *Example) OnAccount(r ledger.Resolver, token string) bool {
	switch token {
	case "工行":
		r.SetAccount("资产:银行:ICBC 工商银行")
	case "农行":
		r.SetAccount("负债:信用卡:农行 6666")
		if r.IsCredit() && r.CheckHint("储蓄卡") {
			r.SetAccount("资产:银行:ABC 农业银行")
		}
		if r.IsDebit() && !r.CheckHint("还款") {
			r.SetAccount("资产:银行:ABC 农业银行")
		}
	case "中行":
		m.bank(r, "资产:银行:BOC 中国银行", "负债:信用卡:中行 1234", "负债:信用卡:中行 1234:已出账单")
	case "建行":
		m.bank(r, "资产:银行:CCB 建设银行", "负债:信用卡:建行 8888", "负债:信用卡:建行 8888:已出账单")
	case "用餐":
		r.SetAccount("支出:用餐")
	case "杂项":
		r.SetAccount("支出:杂项")
	default:
		return false
	}
	return true
}

func (m *Example) OnReward(r ledger.Resolver) {
	r.SetAccount("收入:优惠券变现")
	if r.CheckDebit(m.expenseTokens...) {
		r.SetAccount("收入:优惠或礼遇")
	}
	if r.CheckHint("利息") {
		r.SetAccount("收入:利息")
	}
}

// bank resolves a bank holding a savings account and a credit card. Paying
// from a savings card or moving money between banks uses the savings
// account; repaying ("还款") a card targets the card's statement account
// unless the repayment is for the unbilled balance ("未出账单").
func (m *Example) bank(r ledger.Resolver, savings, card, bill string) {
	r.SetAccount(card)

	if r.IsCredit() {
		if r.CheckHint("储蓄卡") || r.CheckDebit(m.bankTokens...) {
			r.SetAccount(savings)
		}
	}
	if r.IsDebit() && !r.CheckHint("还款") {
		r.SetAccount(savings)
	}
	if r.IsDebit() && r.CheckHint("还款") && !r.CheckHint("未出账单") {
		r.SetAccount(bill)
	}
}
