package backup

import "errors"

var errInvalidFileName = errors.New("backup file must be a store-chicken-backup .json file")
