package utils

import "github.com/shopspring/decimal"

// RoundMoney rounds to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DecimalFromFloat converts a float coming off the wire into a cent-rounded decimal.
func DecimalFromFloat(f float64) decimal.Decimal {
	return RoundMoney(decimal.NewFromFloat(f))
}
