package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newRedisProvider(t *testing.T) (*RedisOTPProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return &RedisOTPProvider{Client: client, CodeLength: 6, TTL: 5 * time.Minute}, mr
}

// Only the bcrypt hash of a sent code is stored, so the happy path is driven
// with a challenge record planted directly in Redis.
func TestRedisOTPProviderVerify(t *testing.T) {
	p, _ := newRedisProvider(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)
	payload, err := json.Marshal(otpChallenge{Phone: "9876543210", CodeHash: string(hash)})
	require.NoError(t, err)
	require.NoError(t, p.Client.Set(ctx, otpChallengePrefix+"planted", payload, time.Minute).Err())

	require.NoError(t, p.VerifyCode(ctx, "planted", "123456"))

	// Verification is one shot: the challenge is consumed.
	err = p.VerifyCode(ctx, "planted", "123456")
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestRedisOTPProviderWrongCode(t *testing.T) {
	p, _ := newRedisProvider(t)

	challenge, err := p.SendCode(context.Background(), "9876543210")
	require.NoError(t, err)
	require.NotEmpty(t, challenge)

	err = p.VerifyCode(context.Background(), challenge, "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	// A wrong guess does not consume the challenge.
	err = p.VerifyCode(context.Background(), challenge, "111111")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestRedisOTPProviderUnknownChallenge(t *testing.T) {
	p, _ := newRedisProvider(t)
	err := p.VerifyCode(context.Background(), "no-such-challenge", "123456")
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestRedisOTPProviderExpiry(t *testing.T) {
	p, mr := newRedisProvider(t)

	challenge, err := p.SendCode(context.Background(), "9876543210")
	require.NoError(t, err)

	mr.FastForward(6 * time.Minute)

	err = p.VerifyCode(context.Background(), challenge, "123456")
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestGenerateNumericCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		code, err := generateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes must not repeat deterministically")
}
