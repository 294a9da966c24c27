package service

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrUnauthenticated           = errors.New("unauthenticated")
	ErrLoginUserNotFound         = errors.New("user not found")
	ErrLoginPasswordDoesNotMatch = errors.New("password does not match")
	ErrLoginUserInactive         = errors.New("user is inactive")
)

// IsLoginFailure reports whether err is one of the credential failures.
// Callers must not reveal which one.
func IsLoginFailure(err error) bool {
	return errors.Is(err, ErrLoginUserNotFound) ||
		errors.Is(err, ErrLoginPasswordDoesNotMatch) ||
		errors.Is(err, ErrLoginUserInactive)
}
