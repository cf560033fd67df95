package datagen

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/hyoubkp/ast"
	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/output"
)

func entry(account, amount string) ledger.Entry {
	return ledger.Entry{Account: account, Amount: ast.MustParsePrice(amount)}
}

func lunch() *ledger.Transaction {
	return &ledger.Transaction{
		Date:         ast.Date{Year: 2024, Month: 3, Day: 1},
		Description:  "午饭",
		DebitEntries: []ledger.Entry{entry("支出:用餐", "20")},
		CreditEntries: []ledger.Entry{
			entry("收入:优惠或礼遇", "5"),
			entry("负债:信用卡:中行 1234", "15"),
		},
	}
}

func TestNew(t *testing.T) {
	for _, kind := range Kinds() {
		g, err := New(kind, &bytes.Buffer{})
		assert.NoError(t, err)
		assert.True(t, g != nil)
	}

	_, err := New(Kind("ledger"), &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestStr(t *testing.T) {
	out, err := String(Str{}, []*ledger.Transaction{lunch(), lunch()}, 0)
	assert.NoError(t, err)

	one := "Date: 2024-03-01, num base: 0\n" +
		"Transaction desc: 午饭\n" +
		"支出:用餐 debit 20.00\n" +
		"收入:优惠或礼遇 credit 5.00\n" +
		"负债:信用卡:中行 1234 credit 15.00\n\n"
	assert.Equal(t, one+one, out)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func TestGnuCash(t *testing.T) {
	g := &GnuCash{NewID: sequentialIDs()}

	first := lunch()
	second := lunch()
	second.Description = ""
	second.NumBase = 100

	var buf bytes.Buffer
	assert.NoError(t, g.Write(&buf, []*ledger.Transaction{first}, 0))
	assert.NoError(t, g.Write(&buf, []*ledger.Transaction{second}, 1))

	// A lone space is quoted by the CSV writer.
	want := strings.Join([]string{
		"Date,Transaction ID,Number,Description,Reconcile,Full Account Name,Amount Num.,Value Num.",
		"2024-03-01,id1,0,午饭,n,收入:优惠或礼遇,-5.00,-5.00",
		"2024-03-01,id1,0,午饭,n,负债:信用卡:中行 1234,-15.00,-15.00",
		"2024-03-01,id1,0,午饭,n,支出:用餐,20.00,20.00",
		`2024-03-01,id2,101," ",n,收入:优惠或礼遇,-5.00,-5.00`,
		`2024-03-01,id2,101," ",n,负债:信用卡:中行 1234,-15.00,-15.00`,
		`2024-03-01,id2,101," ",n,支出:用餐,20.00,20.00`,
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestGnuCashQuoting(t *testing.T) {
	tx := lunch()
	tx.Description = `午饭, "小炒"`
	tx.CreditEntries = nil

	out, err := String(&GnuCash{NewID: sequentialIDs()}, []*ledger.Transaction{tx}, 3)
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-01,id1,3,\"午饭, \"\"小炒\"\"\",n,支出:用餐,20.00,20.00\n", out)
}

func TestGnuCashNumbersRun(t *testing.T) {
	first, second := lunch(), lunch()
	first.CreditEntries, second.CreditEntries = nil, nil

	out, err := String(&GnuCash{NewID: sequentialIDs()}, []*ledger.Transaction{first, second}, 0)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "2024-03-01,id1,0,"))
	assert.True(t, strings.HasPrefix(lines[2], "2024-03-01,id2,1,"))
}

func TestGnuCashRandomIDs(t *testing.T) {
	g := NewGnuCash()
	a, b := g.NewID(), g.NewID()
	assert.Equal(t, 32, len(a))
	assert.NotEqual(t, a, b)
	assert.False(t, strings.Contains(a, "-"))
}

func TestTable(t *testing.T) {
	g := NewTable(output.NewStyles(&bytes.Buffer{}))

	flagged := &ledger.Transaction{
		HasBuildError: true,
		Date:          ast.Date{Year: 2024, Month: 3, Day: 2},
		Description:   " FIXME:[工行邮储 20]",
		NumBase:       10,
		DebitEntries:  []ledger.Entry{entry("不平衡的-CNY", "20")},
		CreditEntries: []ledger.Entry{entry("资产:银行:ICBC 工商银行", "20"), entry("不平衡的-CNY", "0")},
	}

	out, err := String(g, []*ledger.Transaction{lunch(), flagged}, 0)
	assert.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"#0 2024-03-01 午饭",
		"  debit   支出:用餐              20.00",
		"  credit  收入:优惠或礼遇         5.00",
		"  credit  负债:信用卡:中行 1234  15.00",
		"#11 2024-03-02 FIXME:[工行邮储 20]",
		"  debit   不平衡的-CNY             20.00",
		"  credit  资产:银行:ICBC 工商银行  20.00",
		"  credit  不平衡的-CNY              0.00",
	}, "\n")+"\n", out)
}

func TestTableImbalance(t *testing.T) {
	tx := lunch()
	tx.CreditEntries = tx.CreditEntries[:1]

	out, err := String(NewTable(output.NewStyles(&bytes.Buffer{})), []*ledger.Transaction{tx}, 0)
	assert.NoError(t, err)
	assert.Contains(t, out, "  imbalance 15.00\n")
}
