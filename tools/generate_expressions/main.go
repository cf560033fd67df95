// Expression File Generator
//
// This tool generates a large file of expression lines for performance
// testing and profiling of the parser and the token mappers. The lines use
// the tokens of the built-in example mapper.
//
// Usage:
//
//	go run main.go > large.txt
//	go run main.go 20000000 > large.txt  # Specify target size in bytes
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robinvdvleuten/hyoubkp/tokmap"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	banks    = []string{"工行", "农行", "中行", "建行", "交行", "邮储"}
	expenses = []string{"用餐", "杂项"}

	comments = []string{
		"午饭", "晚饭", "咖啡", "超市", "地铁", "打车",
		"房租", "水电", "话费", "还信用卡", "转账", "红包",
	}
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	hints := tokmap.NewExample().HintTokens()

	currentDate := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	bytesWritten := 0
	expressionCount := 0

	for bytesWritten < targetSize {
		var line string

		switch rand.Intn(10) {
		case 0, 1, 2: // 30% - Simple transfer
			line = fmt.Sprintf("%s%s %s", pick(banks), pick(banks), randAmount(1, 2000))

		case 3, 4: // 20% - Expense with reward
			line = fmt.Sprintf("%s%s %s-%s", pick(banks), pick(expenses), randAmount(20, 200), randAmount(1, 10))

		case 5: // 10% - Credit and cashback
			line = fmt.Sprintf("%s%s %s@%s+%s", pick(banks), pick(expenses), randAmount(50, 100), randAmount(40, 49), randAmount(1, 5))

		case 6: // 10% - Hinted repayment
			line = fmt.Sprintf("%s%s%s %s", pick(banks), pick(banks), pick(hints), randAmount(100, 5000))

		case 7: // 10% - Compound expression
			line = fmt.Sprintf("%s%s %sx%d，%s %s", pick(banks), pick(expenses), randAmount(5, 30), rand.Intn(5)+1, pick(expenses), randAmount(5, 30))

		case 8: // 10% - Several legs
			legs := make([]string, rand.Intn(4)+2)
			for i := range legs {
				legs[i] = randAmount(1, 100)
			}
			line = fmt.Sprintf("%s%s %s", pick(banks), pick(expenses), strings.Join(legs, " "))

		case 9: // 10% - Next day
			currentDate = currentDate.AddDate(0, 0, 1)
			line = ".date " + currentDate.Format("2006-01-02")
		}

		if !strings.HasPrefix(line, ".") {
			if rand.Intn(3) == 0 {
				line += " '" + pick(comments)
			}
			expressionCount++
		}

		fmt.Println(line)
		bytesWritten += len(line) + 1
	}

	fmt.Fprintf(os.Stderr, "Generated %d bytes with %d expressions\n", bytesWritten, expressionCount)
}

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}

func randAmount(min, max float64) string {
	amount := min + rand.Float64()*(max-min)
	return fmt.Sprintf("%.2f", amount)
}
