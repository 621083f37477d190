package settings

import "errors"

var (
	errSettingsNotFound = errors.New("company settings not found")
	errInvalidLogo      = errors.New("logo must be an image data url")
	errLogoTooLarge     = errors.New("logo larger than 5MB")
)
