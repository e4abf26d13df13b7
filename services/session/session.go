package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"laundrybook/database/store"
	"laundrybook/models"
	"laundrybook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	codePattern  = regexp.MustCompile(`^[0-9]{6}$`)
)

// SendCode validates the phone, rate-limits, and opens a verification flow.
// The returned challenge identifies the flow for all later calls.
func (s *DefaultSessionService) SendCode(ctx context.Context, phone string) (string, error) {
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}

	s.mu.Lock()
	allowed := s.limiterFor(phone).Allow()
	s.mu.Unlock()
	if !allowed {
		utils.GetLogger().Warn("OTP send rate limit exceeded", zap.String("phone", phone))
		return "", ErrRateLimited
	}

	providerChallenge, err := s.Provider.SendCode(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("failed to send code: %w", err)
	}

	challenge := uuid.New().String()
	s.mu.Lock()
	s.flows[challenge] = &flow{
		phone:             phone,
		providerChallenge: providerChallenge,
		state:             StateCodeRequested,
		createdAt:         time.Now(),
	}
	s.mu.Unlock()

	return challenge, nil
}

// ResendCode issues a fresh code for a pending flow. The flow stays in
// CodeRequested; the old provider challenge is released and replaced.
func (s *DefaultSessionService) ResendCode(ctx context.Context, challenge string) error {
	f, err := s.lookupFlow(challenge)
	if err != nil {
		return err
	}

	s.mu.Lock()
	allowed := s.limiterFor(f.phone).Allow()
	s.mu.Unlock()
	if !allowed {
		return ErrRateLimited
	}

	providerChallenge, err := s.Provider.SendCode(ctx, f.phone)
	if err != nil {
		return fmt.Errorf("failed to resend code: %w", err)
	}

	s.mu.Lock()
	if current, ok := s.flows[challenge]; ok {
		current.providerChallenge = providerChallenge
		current.createdAt = time.Now()
	}
	s.mu.Unlock()
	return nil
}

// ChangeNumber abandons a pending flow, returning to Unauthenticated.
func (s *DefaultSessionService) ChangeNumber(ctx context.Context, challenge string) error {
	s.mu.Lock()
	delete(s.flows, challenge)
	s.mu.Unlock()
	return nil
}

// VerifyCode completes a flow. Authentication succeeds only if the provider
// confirms the code AND a resident profile exists for the phone; a verified
// phone with no profile is rejected and the provider session torn down.
func (s *DefaultSessionService) VerifyCode(ctx context.Context, challenge, code string) (*models.Identity, error) {
	if !codePattern.MatchString(code) {
		return nil, ErrMalformedCode
	}

	f, err := s.lookupFlow(challenge)
	if err != nil {
		return nil, err
	}

	if err := s.Provider.VerifyCode(ctx, f.providerChallenge, code); err != nil {
		if errors.Is(err, ErrInvalidCode) || errors.Is(err, ErrCodeExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("code verification failed: %w", err)
	}

	fields, err := s.Store.Get(ctx, ProfilesCollection, f.phone)
	if errors.Is(err, store.ErrNotFound) {
		s.abandonVerified(ctx, challenge, f.phone)
		return nil, ErrProfileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}

	profile, err := models.ProfileFromFields(f.phone, fields)
	if err != nil {
		utils.GetLogger().Error("Malformed profile document", zap.String("phone", f.phone), zap.Error(err))
		s.abandonVerified(ctx, challenge, f.phone)
		return nil, fmt.Errorf("profile rejected: %w", err)
	}

	token, err := s.Tokens.Issue(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.mu.Lock()
	delete(s.flows, challenge)
	s.mu.Unlock()

	return &models.Identity{
		Name:  profile.Name,
		Phone: profile.Phone,
		Room:  profile.Room,
		Token: token,
	}, nil
}

// Logout revokes the session token and tears down provider-side state.
// Slot state is never touched.
func (s *DefaultSessionService) Logout(ctx context.Context, token string) error {
	phone, _, err := utils.ExtractClaimsFromToken(token)
	if err != nil {
		return fmt.Errorf("invalid session token: %w", err)
	}
	if err := s.Tokens.Revoke(ctx, token); err != nil {
		return err
	}
	if err := s.Provider.SignOut(ctx, phone); err != nil {
		utils.GetLogger().Error("Provider sign-out failed", zap.String("phone", phone), zap.Error(err))
	}
	return nil
}

// lookupFlow returns the pending flow or ErrCodeExpired when it is absent or
// past its TTL. An unknown challenge and an expired one are deliberately
// indistinguishable to the caller.
func (s *DefaultSessionService) lookupFlow(challenge string) (flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flows[challenge]
	if !ok {
		return flow{}, ErrCodeExpired
	}
	if time.Since(f.createdAt) > s.flowTTL() {
		delete(s.flows, challenge)
		return flow{}, ErrCodeExpired
	}
	return *f, nil
}

// abandonVerified drops a flow whose code verified but whose identity is
// unusable, signing the phone out of the provider.
func (s *DefaultSessionService) abandonVerified(ctx context.Context, challenge, phone string) {
	s.mu.Lock()
	delete(s.flows, challenge)
	s.mu.Unlock()
	if err := s.Provider.SignOut(ctx, phone); err != nil {
		utils.GetLogger().Error("Provider sign-out failed", zap.String("phone", phone), zap.Error(err))
	}
}
