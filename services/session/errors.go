package session

import "errors"

// Error taxonomy for the authentication flow. Validation errors are resolved
// entirely client-side and never reach the provider or store; auth and
// profile errors are surfaced inline and do not advance session state.
var (
	// ErrInvalidPhone: malformed phone number, rejected before any network call.
	ErrInvalidPhone = errors.New("session: phone number must be 10 digits")

	// ErrMalformedCode: code of the wrong shape, rejected before verification.
	ErrMalformedCode = errors.New("session: code must be 6 digits")

	// ErrInvalidCode: the provider rejected the code value.
	ErrInvalidCode = errors.New("session: invalid verification code")

	// ErrCodeExpired: the challenge no longer exists or the code's TTL passed.
	ErrCodeExpired = errors.New("session: verification code expired")

	// ErrProfileMissing: the code verified but no room assignment exists for
	// the phone. A verified phone with no profile is not a usable identity.
	ErrProfileMissing = errors.New("session: no resident profile for this phone")

	// ErrRateLimited: too many code requests for one phone.
	ErrRateLimited = errors.New("session: too many code requests, try again later")
)

// IsValidationError reports whether err was raised before any call to the
// identity provider or store.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidPhone) || errors.Is(err, ErrMalformedCode)
}
