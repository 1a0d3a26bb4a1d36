package auth

import "errors"

// ErrEmailExists is returned by repositories when the email is already registered.
var ErrEmailExists = errors.New("email already exists")

// Error codes surfaced through apperrors.
const (
	CodeInvalidInput       = "invalid_input"
	CodeEmailExists        = "email_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeUserNotFound       = "user_not_found"
	CodeAuthError          = "auth_error"
)
