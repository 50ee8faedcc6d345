package helper

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"event_hub/clock"
	"event_hub/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type AccessClaims struct {
	Email       string `json:"email"`
	IsOrganizer bool   `json:"is_organizer"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) *TokenManager {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) GenerateAccessToken(user model.User) (string, error) {
	now := m.clock.Now()
	claims := AccessClaims{
		Email:       user.Email,
		IsOrganizer: user.IsOrganizer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies the signature, algorithm and expiry of tokenString
// and returns the identity it carries.
func (m *TokenManager) ParseToken(tokenString string) (model.TokenClaim, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return model.TokenClaim{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return model.TokenClaim{}, ErrInvalidToken
	}

	userId, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userId == 0 {
		return model.TokenClaim{}, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, claims.Subject)
	}

	return model.TokenClaim{
		UserId:      uint(userId),
		Email:       claims.Email,
		IsOrganizer: claims.IsOrganizer,
	}, nil
}

// GetTokenClaim returns the identity stored by middleware.Protected.
func GetTokenClaim(c *fiber.Ctx) (model.TokenClaim, bool) {
	claim, ok := c.Locals("user").(model.TokenClaim)
	return claim, ok
}
