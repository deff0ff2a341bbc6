package model

import (
	"math"
	"math/big"
	"strings"
)

type Web3BigInt struct {
	Value   string `json:"value"`
	Decimal int    `json:"decimal"`
}

func (w *Web3BigInt) Int64() (int64, bool) {
	amt, ok := new(big.Int).SetString(w.Value, 10)
	if !ok {
		return 0, false
	}

	return amt.Int64(), true
}

func (w *Web3BigInt) ToFloat() float64 {
	num := new(big.Int)
	num.SetString(w.Value, 10)

	floatNum := new(big.Float).SetInt(num)

	divisor := new(big.Float).SetFloat64(math.Pow(10, float64(w.Decimal)))

	floatNum.Quo(floatNum, divisor)

	result, _ := floatNum.Float64()
	return result
}

func (w *Web3BigInt) Add(number *Web3BigInt) *Web3BigInt {
	num1 := new(big.Int)
	num1.SetString(w.Value, 10)

	num2 := new(big.Int)
	num2.SetString(number.Value, 10)

	result := new(big.Int)
	result.Add(num1, num2)

	return &Web3BigInt{
		Value:   result.String(),
		Decimal: w.Decimal,
	}
}

func (w *Web3BigInt) Sub(number *Web3BigInt) *Web3BigInt {
	num1 := new(big.Int)
	num1.SetString(w.Value, 10)

	num2 := new(big.Int)
	num2.SetString(number.Value, 10)

	result := new(big.Int)
	result.Sub(num1, num2)

	return &Web3BigInt{
		Value:   result.String(),
		Decimal: w.Decimal,
	}
}

func (w *Web3BigInt) Cmp(number *Web3BigInt) int {
	num1 := new(big.Int)
	num1.SetString(w.Value, 10)

	num2 := new(big.Int)
	num2.SetString(number.Value, 10)

	return num1.Cmp(num2)
}

func (w *Web3BigInt) IsZero() bool {
	num := new(big.Int)
	num.SetString(w.Value, 10)
	return num.Sign() == 0
}

// FromFloat builds a Web3BigInt from a float amount at the given decimal
// precision. Truncates toward zero.
func FromFloat(amount float64, decimal int) *Web3BigInt {
	scaled := new(big.Float).Mul(
		new(big.Float).SetFloat64(amount),
		new(big.Float).SetFloat64(math.Pow(10, float64(decimal))),
	)
	result := new(big.Int)
	scaled.Int(result)
	return &Web3BigInt{
		Value:   result.String(),
		Decimal: decimal,
	}
}

// DecimalString renders the amount as a human-readable decimal string,
// trimming trailing zeros ("50000000" @ 8 -> "0.5").
func (w *Web3BigInt) DecimalString() string {
	num := new(big.Int)
	num.SetString(w.Value, 10)

	neg := num.Sign() < 0
	if neg {
		num.Neg(num)
	}

	str := num.String()
	if w.Decimal <= 0 {
		if neg {
			return "-" + str
		}
		return str
	}

	for len(str) <= w.Decimal {
		str = "0" + str
	}
	whole := str[:len(str)-w.Decimal]
	frac := strings.TrimRight(str[len(str)-w.Decimal:], "0")

	out := whole
	if frac != "" {
		out = whole + "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
