package validation

import "github.com/shopspring/decimal"

const (
	maxScale    = 8
	maxExponent = 12
)

// DecimalWithin reports whether 0 <= d <= max. Values whose exponent falls
// outside [-8, 12] are rejected before they are compared, so a request can't
// force a huge rescale.
func DecimalWithin(d, max decimal.Decimal) bool {
	if e := d.Exponent(); e < -maxScale || e > maxExponent {
		return false
	}
	return !d.IsNegative() && d.LessThanOrEqual(max)
}
