package delivery

import "errors"

var (
	errZoneNotFound    = errors.New("delivery zone not found")
	errAddressNotFound = errors.New("business address not configured")
)

const msgInvalidRadius = "Distância deve ser maior que 0 e no máximo 9999,99 km"
