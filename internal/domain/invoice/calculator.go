// Package invoice contiene el cálculo financiero de facturas con GST (servicio de dominio puro).
package invoice

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LineItem línea de factura tal como la captura el editor.
type LineItem struct {
	Name           string
	Quantity       decimal.Decimal
	UnitRate       decimal.Decimal
	GSTRatePercent int
}

// Amount = Quantity * UnitRate, sin redondeo.
func (l LineItem) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitRate)
}

// AdditionalCharges cargos fuera de las líneas (RTO, seguro, hipoteca) y el descuento global.
type AdditionalCharges struct {
	RTOCharges           decimal.Decimal
	InsuranceCharges     decimal.Decimal
	HypothecationCharges decimal.Decimal
	DiscountAmount       decimal.Decimal
}

// Total suma los cargos; el descuento no participa.
func (c AdditionalCharges) Total() decimal.Decimal {
	return c.RTOCharges.Add(c.InsuranceCharges).Add(c.HypothecationCharges)
}

// RateGroup base gravable e impuesto de todas las líneas con la misma tasa.
type RateGroup struct {
	TaxableAmount decimal.Decimal
	GSTAmount     decimal.Decimal
}

// Snapshot resultado inmutable del cálculo. Una edición produce un Snapshot nuevo.
//
// GrandTotal = Subtotal + TotalGST + TotalCharges - DiscountAmount
type Snapshot struct {
	Subtotal       decimal.Decimal
	GSTBreakdown   map[int]RateGroup
	TotalGST       decimal.Decimal
	TotalCharges   decimal.Decimal
	DiscountAmount decimal.Decimal
	GrandTotal     decimal.Decimal
}

// Rates devuelve las tasas presentes en el desglose en orden ascendente.
func (s Snapshot) Rates() []int {
	rates := make([]int, 0, len(s.GSTBreakdown))
	for r := range s.GSTBreakdown {
		rates = append(rates, r)
	}
	sort.Ints(rates)
	return rates
}

// Validator regla opcional aplicada sobre un Snapshot ya calculado.
type Validator func(Snapshot) error

// Calculator calcula snapshots y aplica las validaciones configuradas.
// No guarda estado entre llamadas.
type Calculator struct {
	validators []Validator
}

// NewCalculator construye el calculador con validaciones opcionales.
func NewCalculator(validators ...Validator) *Calculator {
	return &Calculator{validators: validators}
}

// Compute calcula el Snapshot y luego ejecuta los validadores en orden.
func (c *Calculator) Compute(items []LineItem, charges AdditionalCharges) (Snapshot, error) {
	snap, err := Compute(items, charges)
	if err != nil {
		return Snapshot{}, err
	}
	for _, v := range c.validators {
		if err := v(snap); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

// Compute transforma líneas y cargos en un Snapshot.
//  1. amount = quantity * unitRate por línea
//  2. subtotal = suma de amounts
//  3. agrupación por tasa: taxable = suma de amounts, gst = taxable * tasa / 100
//  4. totalGst = suma de gst de los grupos
//  5. totalCharges = rto + seguro + hipoteca
//  6. grandTotal = subtotal + totalGst + totalCharges - descuento
//
// Cualquier error aborta el cálculo completo.
func Compute(items []LineItem, charges AdditionalCharges) (Snapshot, error) {
	if err := validateCharges(charges); err != nil {
		return Snapshot{}, err
	}

	subtotal := decimal.Zero
	taxableByRate := make(map[int]decimal.Decimal)
	for i, item := range items {
		if !IsSupportedRate(item.GSTRatePercent) {
			return Snapshot{}, &InvalidRateError{Index: i, Rate: item.GSTRatePercent}
		}
		if item.Quantity.IsNegative() {
			return Snapshot{}, &InvalidQuantityError{Index: i, Field: "quantity", Value: item.Quantity.String()}
		}
		if item.UnitRate.IsNegative() {
			return Snapshot{}, &InvalidQuantityError{Index: i, Field: "unit_rate", Value: item.UnitRate.String()}
		}
		amount := item.Amount()
		subtotal = subtotal.Add(amount)
		taxable, ok := taxableByRate[item.GSTRatePercent]
		if !ok {
			taxable = decimal.Zero
		}
		taxableByRate[item.GSTRatePercent] = taxable.Add(amount)
	}

	// Recorrido en orden de tasa para que la suma sea determinista.
	rates := make([]int, 0, len(taxableByRate))
	for r := range taxableByRate {
		rates = append(rates, r)
	}
	sort.Ints(rates)

	breakdown := make(map[int]RateGroup, len(rates))
	totalGST := decimal.Zero
	for _, r := range rates {
		taxable := taxableByRate[r]
		gst := gstFor(taxable, r)
		breakdown[r] = RateGroup{TaxableAmount: taxable, GSTAmount: gst}
		totalGST = totalGST.Add(gst)
	}

	totalCharges := charges.Total()
	grandTotal := subtotal.Add(totalGST).Add(totalCharges).Sub(charges.DiscountAmount)

	return Snapshot{
		Subtotal:       subtotal,
		GSTBreakdown:   breakdown,
		TotalGST:       totalGST,
		TotalCharges:   totalCharges,
		DiscountAmount: charges.DiscountAmount,
		GrandTotal:     grandTotal,
	}, nil
}

func validateCharges(c AdditionalCharges) error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"rto_charges", c.RTOCharges},
		{"insurance_charges", c.InsuranceCharges},
		{"hypothecation_charges", c.HypothecationCharges},
		{"discount_amount", c.DiscountAmount},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return &InvalidQuantityError{Index: -1, Field: f.name, Value: f.value.String()}
		}
	}
	return nil
}
