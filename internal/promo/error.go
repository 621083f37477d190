package promo

import "errors"

var (
	ErrPromoNotFound   = errors.New("promo code not found")
	ErrPromoInactive   = errors.New("promo code inactive")
	ErrPromoNotStarted = errors.New("promo code not valid yet")
	ErrPromoExpired    = errors.New("promo code expired")
	ErrPromoDepleted   = errors.New("promo code usage limit reached")
	ErrBelowMinimum    = errors.New("order below promo minimum")
)
