package stats

import "math"

// centsScale is the fixed-point scale factor: two decimal places
const centsScale = 100

// Cents is a fixed-point price amount scaled by 100 and backed by int64, so
// prices can accumulate in an atomic counter without floating drift. The
// tradeoff is two decimal places of precision and an overflow ceiling of
// roughly 92 quadrillion dollars of accumulated price.
type Cents int64

// CentsFromPrice converts a price to its fixed-point representation,
// rounding to the nearest cent
func CentsFromPrice(price float64) Cents {
	return Cents(math.Round(price * centsScale))
}

// Price converts the fixed-point amount back to a price
func (c Cents) Price() float64 {
	return float64(c) / centsScale
}
