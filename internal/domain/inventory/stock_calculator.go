package inventory

import "github.com/shopspring/decimal"

// ApplyDelta aplica un delta al stock actual. El resultado nunca es negativo:
// si la salida supera el stock disponible se recorta en cero y clamped es true.
// NuevoStock = max(0, StockActual + Delta)
func ApplyDelta(current, delta decimal.Decimal) (newStock decimal.Decimal, clamped bool) {
	next := current.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, true
	}
	return next, false
}

// BelowMinimum indica si el stock está por debajo del mínimo configurado.
// Un mínimo en cero desactiva la regla.
func BelowMinimum(current, minLevel decimal.Decimal) bool {
	return minLevel.IsPositive() && current.LessThan(minLevel)
}

// SuggestedOrderQty cantidad para llevar el stock al máximo configurado.
// Sin máximo se usa el doble del mínimo como objetivo.
func SuggestedOrderQty(current, minLevel, maxLevel decimal.Decimal) decimal.Decimal {
	target := maxLevel
	if !target.IsPositive() {
		target = minLevel.Mul(decimal.NewFromInt(2))
	}
	qty := target.Sub(current)
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty
}
