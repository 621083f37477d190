package delivery

import (
	"errors"

	"github.com/mserebryaakov/delivery-panel/config"
	"github.com/mserebryaakov/delivery-panel/pkg/validation"
	"github.com/shopspring/decimal"
)

var errInvalidRadius = errors.New("radius must be positive and at most 9999.99 km")

// MaxRadiusKm is the largest radius the numeric(6,2) column holds.
var MaxRadiusKm = decimal.RequireFromString("9999.99")

var (
	minTimeFactor = decimal.RequireFromString("0.8")
	maxTimeFactor = decimal.RequireFromString("1.2")
)

// Rates are the constants of the radius based estimate.
type Rates struct {
	BaseRate    decimal.Decimal
	RatePerKm   decimal.Decimal
	BaseMinTime int
	BaseMaxTime int
	TimePerKm   decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		BaseRate:    decimal.NewFromInt(3),
		RatePerKm:   decimal.NewFromInt(1),
		BaseMinTime: 10,
		BaseMaxTime: 20,
		TimePerKm:   decimal.NewFromInt(2),
	}
}

func RatesFromConfig(cfg config.DeliveryConfig) Rates {
	return Rates{
		BaseRate:    decimal.NewFromFloat(cfg.BaseRate),
		RatePerKm:   decimal.NewFromFloat(cfg.RatePerKm),
		BaseMinTime: cfg.BaseMinTime,
		BaseMaxTime: cfg.BaseMaxTime,
		TimePerKm:   decimal.NewFromFloat(cfg.TimePerKm),
	}
}

type Estimate struct {
	RadiusKm decimal.Decimal `json:"radius_km"`
	Fee      decimal.Decimal `json:"fee"`
	MinTime  int             `json:"min_time"`
	MaxTime  int             `json:"max_time"`
}

// Estimate returns fee = base + radius*rate (2 places) and a delivery window
// of base time plus 80%..120% of radius*timePerKm minutes, floored.
func (r Rates) Estimate(radiusKm decimal.Decimal) (Estimate, error) {
	if !radiusKm.IsPositive() || !validation.DecimalWithin(radiusKm, MaxRadiusKm) {
		return Estimate{}, errInvalidRadius
	}

	travel := radiusKm.Mul(r.TimePerKm)

	return Estimate{
		RadiusKm: radiusKm,
		Fee:      r.BaseRate.Add(radiusKm.Mul(r.RatePerKm)).Round(2),
		MinTime:  r.BaseMinTime + int(travel.Mul(minTimeFactor).Floor().IntPart()),
		MaxTime:  r.BaseMaxTime + int(travel.Mul(maxTimeFactor).Floor().IntPart()),
	}, nil
}
