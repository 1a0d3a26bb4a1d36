package dreamrepo

import "errors"

// ErrDuplicateEntry is returned when an entry ID is inserted twice.
var ErrDuplicateEntry = errors.New("dream entry already exists")
