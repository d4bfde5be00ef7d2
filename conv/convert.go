package conv

import "github.com/ericlagergren/decimal"

var zeroRounded decimal.Big

func init() {
	zeroRounded = decimal.Big{}
	zeroRounded.Context = decimal.Context128
	zeroRounded.Context.RoundingMode = decimal.ToZero
	zeroRounded.Quantize(2)
}

// NewMoney returns a zero valued decimal configured for currency amounts
func NewMoney() *decimal.Big {
	z := zeroRounded
	return &z
}

// MoneyFromString parses a currency amount, returning false on garbage input
func MoneyFromString(amount string) (*decimal.Big, bool) {
	dec := NewMoney()
	if _, ok := dec.SetString(amount); !ok {
		return nil, false
	}
	if dec.Sign() < 0 {
		return nil, false
	}
	return RoundToMoney(dec), true
}

// MoneyFromFloat converts a configured rate into a decimal
func MoneyFromFloat(value float64) *decimal.Big {
	dec := &decimal.Big{}
	dec.Context = decimal.Context128
	dec.Context.RoundingMode = decimal.ToZero
	return dec.SetFloat64(value)
}

// RoundToMoney truncates the given amount to two decimal places
func RoundToMoney(amount *decimal.Big) *decimal.Big {
	amount.Context = decimal.Context128
	amount.Context.RoundingMode = decimal.ToZero
	amount.Quantize(2)
	return amount
}

// CloneToMoney copies the amount before truncating so the input stays untouched
func CloneToMoney(amount *decimal.Big) *decimal.Big {
	dec := &decimal.Big{}
	dec.Context = decimal.Context128
	dec.Context.RoundingMode = decimal.ToZero
	dec.Copy(amount)
	dec.Quantize(2)
	return dec
}
