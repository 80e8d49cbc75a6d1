package models

import "github.com/shopspring/decimal"

// MoneyPlaces is the scale of every decimal(12,2) money column.
const MoneyPlaces = 2

var moneyLimit = decimal.New(1, 10)

// ValidMoney reports whether d fits a money column exactly: at most two
// decimal places and ten integer digits.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces)) && d.Abs().LessThan(moneyLimit)
}
