package session

import (
	"context"
	"sync"
	"time"

	"laundrybook/database/store"
	"laundrybook/models"

	"golang.org/x/time/rate"
)

// ProfilesCollection is the document store collection holding resident
// profiles, keyed by E.164 phone digits.
const ProfilesCollection = "profiles"

// SessionService drives the authentication state machine:
//
//	Unauthenticated -> (SendCode) -> CodeRequested
//	CodeRequested   -> (ResendCode) -> CodeRequested
//	CodeRequested   -> (ChangeNumber) -> Unauthenticated
//	CodeRequested   -> (VerifyCode ok + profile found) -> Authenticated
//	Authenticated   -> (Logout) -> Unauthenticated
type SessionService interface {
	SendCode(ctx context.Context, phone string) (challenge string, err error)
	ResendCode(ctx context.Context, challenge string) error
	ChangeNumber(ctx context.Context, challenge string) error
	VerifyCode(ctx context.Context, challenge, code string) (*models.Identity, error)
	Logout(ctx context.Context, token string) error
}

// State is a pending flow's position in the session state machine.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateCodeRequested   State = "code_requested"
	StateAuthenticated   State = "authenticated"
)

// flow tracks one pending verification. The provider challenge handle is
// owned here, scoped to the flow: it is replaced on resend and dropped on
// change-number or verification failure, never kept as ambient global state.
type flow struct {
	phone             string
	providerChallenge string
	state             State
	createdAt         time.Time
}

// DefaultSessionService is the production implementation.
type DefaultSessionService struct {
	Store    store.DocumentStore
	Provider IdentityProvider
	Tokens   TokenManager

	// FlowTTL bounds how long a pending verification may sit before it is
	// treated as expired. Zero means 10 minutes.
	FlowTTL time.Duration

	// SendPerMinute caps code requests per phone. Zero means 3.
	SendPerMinute int

	mu       sync.Mutex
	flows    map[string]*flow
	limiters map[string]*rate.Limiter
}

func NewDefaultSessionService(st store.DocumentStore, provider IdentityProvider, tokens TokenManager) *DefaultSessionService {
	return &DefaultSessionService{
		Store:    st,
		Provider: provider,
		Tokens:   tokens,
		flows:    make(map[string]*flow),
		limiters: make(map[string]*rate.Limiter),
	}
}

func (s *DefaultSessionService) flowTTL() time.Duration {
	if s.FlowTTL <= 0 {
		return 10 * time.Minute
	}
	return s.FlowTTL
}

// limiterFor returns the rate limiter for a phone, creating one if needed.
func (s *DefaultSessionService) limiterFor(phone string) *rate.Limiter {
	perMin := s.SendPerMinute
	if perMin <= 0 {
		perMin = 3
	}
	limiter, exists := s.limiters[phone]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)
		s.limiters[phone] = limiter
	}
	return limiter
}
