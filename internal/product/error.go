package product

import "errors"

var (
	errProductNotFound = errors.New("product not found")
)
