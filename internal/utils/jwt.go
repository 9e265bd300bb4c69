package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the authenticated user id inside every issued token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens. Access and refresh tokens use
// separate secrets; the reset-password link reuses the refresh secret with its
// own shorter expiry.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetLinkTTL  time.Duration
}

func NewTokenManager(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL, resetLinkTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		resetLinkTTL:  resetLinkTTL,
	}
}

func (m *TokenManager) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{userID},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// SignAccessToken issues a short-lived access token for userID.
func (m *TokenManager) SignAccessToken(userID string) (string, error) {
	return m.sign(userID, m.accessSecret, m.accessTTL)
}

// SignRefreshToken issues a refresh token for userID. The same string also
// backs email-verification links until it is overwritten.
func (m *TokenManager) SignRefreshToken(userID string) (string, error) {
	return m.sign(userID, m.refreshSecret, m.refreshTTL)
}

// SignResetLinkToken issues a refresh-format token with the reset-link expiry.
func (m *TokenManager) SignResetLinkToken(userID string) (string, error) {
	return m.sign(userID, m.refreshSecret, m.resetLinkTTL)
}

func (m *TokenManager) verify(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	// The audience claim must name the embedded user.
	if !containsAudience(claims.Audience, claims.UserID) {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// VerifyAccessToken validates signature, expiry, issuer and audience and
// returns the user id embedded in the token.
func (m *TokenManager) VerifyAccessToken(tokenStr string) (string, error) {
	return m.verify(tokenStr, m.accessSecret)
}

// VerifyRefreshToken validates a refresh (or verification/reset) token.
func (m *TokenManager) VerifyRefreshToken(tokenStr string) (string, error) {
	return m.verify(tokenStr, m.refreshSecret)
}

func containsAudience(aud jwt.ClaimStrings, target string) bool {
	for _, a := range aud {
		if a == target {
			return true
		}
	}
	return false
}
