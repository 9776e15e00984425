package invoice

import "github.com/shopspring/decimal"

// Tasas de GST publicadas (porcentaje). Cualquier otra tasa es rechazada.
const (
	RateExempt      = 0
	RateFive        = 5
	RateTwelve      = 12
	RateEighteen    = 18
	RateTwentyEight = 28
)

var supportedRates = map[int]struct{}{
	RateExempt:      {},
	RateFive:        {},
	RateTwelve:      {},
	RateEighteen:    {},
	RateTwentyEight: {},
}

// IsSupportedRate indica si el porcentaje es una de las tasas de GST vigentes.
func IsSupportedRate(rate int) bool {
	_, ok := supportedRates[rate]
	return ok
}

// SupportedRates devuelve las tasas soportadas en orden ascendente.
func SupportedRates() []int {
	return []int{RateExempt, RateFive, RateTwelve, RateEighteen, RateTwentyEight}
}

// gstFor calcula el impuesto de una base gravable: base * tasa / 100.
// Shift(-2) divide entre 100 sin pérdida de precisión.
func gstFor(taxable decimal.Decimal, rate int) decimal.Decimal {
	return taxable.Mul(decimal.NewFromInt(int64(rate))).Shift(-2)
}
