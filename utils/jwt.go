package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"laundrybook/config"

	"github.com/golang-jwt/jwt"
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "laundrybook-dev"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT token for an authenticated resident.
// The subject is the resident's phone number; the room is carried as a claim.
// The token expires after the specified duration.
func GenerateToken(phone, room string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  phone,
		"room": room,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractClaimsFromToken extracts the phone (subject) and room claims from a
// valid token string.
func ExtractClaimsFromToken(tokenString string) (phone, room string, err error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	phone, ok = claims["sub"].(string)
	if !ok || phone == "" {
		return "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	room, ok = claims["room"].(string)
	if !ok || room == "" {
		return "", "", errors.New("token does not contain a valid 'room' claim")
	}

	return phone, room, nil
}
