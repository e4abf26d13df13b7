package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"laundrybook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const otpChallengePrefix = "otp:"

// RedisOTPProvider implements IdentityProvider with codes generated locally,
// stored bcrypt-hashed in Redis under the challenge handle, and delivered via
// an SMS hook. A challenge that has fallen out of Redis is indistinguishable
// from an expired code, which is exactly the contract callers get.
type RedisOTPProvider struct {
	Client     *redis.Client
	CodeLength int
	TTL        time.Duration
}

type otpChallenge struct {
	Phone    string `json:"phone"`
	CodeHash string `json:"codeHash"`
}

// generateNumericCode produces a uniformly random code of the given length.
func generateNumericCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// SendSMS delivers a message to the given phone number. Replace the body with
// the actual SMS gateway integration; for now the outgoing message is logged.
func SendSMS(phoneNumber, message string) error {
	utils.GetLogger().Sugar().Infof("Sending SMS to %s: %s", phoneNumber, message)
	return nil
}

func (p *RedisOTPProvider) SendCode(ctx context.Context, phone string) (string, error) {
	code, err := generateNumericCode(p.CodeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}

	challenge := uuid.New().String()
	payload, err := json.Marshal(otpChallenge{Phone: phone, CodeHash: string(hash)})
	if err != nil {
		return "", fmt.Errorf("failed to marshal challenge: %w", err)
	}
	if err := p.Client.Set(ctx, otpChallengePrefix+challenge, payload, p.TTL).Err(); err != nil {
		utils.GetLogger().Error("Failed to cache OTP challenge", zap.Error(err))
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}

	message := fmt.Sprintf("Your laundry booking code is: %s. It expires in %v.", code, p.TTL)
	if err := SendSMS(phone, message); err != nil {
		utils.GetLogger().Error("Failed to send OTP via SMS", zap.Error(err))
		return "", fmt.Errorf("failed to send code: %w", err)
	}

	return challenge, nil
}

func (p *RedisOTPProvider) VerifyCode(ctx context.Context, challenge, code string) error {
	data, err := p.Client.Get(ctx, otpChallengePrefix+challenge).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCodeExpired
		}
		return fmt.Errorf("failed to retrieve challenge: %w", err)
	}

	var stored otpChallenge
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(code)) != nil {
		return ErrInvalidCode
	}

	// One shot: delete the challenge after successful verification.
	if err := p.Client.Del(ctx, otpChallengePrefix+challenge).Err(); err != nil {
		utils.GetLogger().Error("Failed to delete challenge after verification", zap.Error(err))
	}
	return nil
}

func (p *RedisOTPProvider) SignOut(ctx context.Context, phone string) error {
	// No provider-side session outlives verification; nothing to tear down.
	utils.GetLogger().Debug("provider sign-out", zap.String("phone", phone))
	return nil
}
