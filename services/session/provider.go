package session

import "context"

// IdentityProvider is the external phone-verification collaborator. The
// session service never sees codes in transit; it holds only the opaque
// challenge handle returned by SendCode.
type IdentityProvider interface {
	// SendCode issues a one-time code to the phone and returns a challenge
	// handle for the pending verification.
	SendCode(ctx context.Context, phone string) (challenge string, err error)

	// VerifyCode checks the code against the pending challenge. Returns
	// ErrInvalidCode or ErrCodeExpired on rejection.
	VerifyCode(ctx context.Context, challenge, code string) error

	// SignOut tears down any provider-side state for the phone.
	SignOut(ctx context.Context, phone string) error
}
