package domain

import "errors"

// Domain errors
var (
	ErrNotLoggedIn       = errors.New("no active session")
	ErrInsufficientCoins = errors.New("insufficient coin balance")
	ErrItemAlreadyOwned  = errors.New("item already in inventory")
	ErrItemNotFound      = errors.New("item not in catalog")
	ErrOwnFriendCode     = errors.New("cannot add your own friend code")
	ErrFriendExists      = errors.New("friend with that code already added")
	ErrDateRequired      = errors.New("workout date is required")
	ErrRecordNotFound    = errors.New("no workout record for that date")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInternalError     = errors.New("internal server error")
)

// IsValidationError checks if an error is an expected validation failure
// that leaves state untouched, as opposed to an infrastructure fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNotLoggedIn) ||
		errors.Is(err, ErrInsufficientCoins) ||
		errors.Is(err, ErrItemAlreadyOwned) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrOwnFriendCode) ||
		errors.Is(err, ErrFriendExists) ||
		errors.Is(err, ErrDateRequired) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrItemNotFound)
}
