package userrepo

import "errors"

// ErrUserNotFound is returned by writes that target a missing user.
var ErrUserNotFound = errors.New("user not found")
