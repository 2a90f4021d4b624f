package utils

import (
	"errors"
	"fmt"
	"time"

	"agri_advisor/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is the iss claim of every session token.
const TokenIssuer = "agri-advisor"

// ErrInvalidToken is returned for tokens that parse but carry no usable session.
var ErrInvalidToken = errors.New("invalid session token")

// JWTClaims is the payload of a session token.
type JWTClaims struct {
	UserID string     `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil signs and checks HS256 session tokens.
type JWTUtil struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewJWTUtil creates a JWTUtil whose tokens live for expirationHours.
func NewJWTUtil(secretKey string, expirationHours int64) *JWTUtil {
	return &JWTUtil{
		secretKey: []byte(secretKey),
		ttl:       time.Duration(expirationHours) * time.Hour,
		now:       time.Now,
	}
}

// GenerateToken signs a session token for a user in the given role.
func (ju *JWTUtil) GenerateToken(userID string, role model.Role) (string, error) {
	now := ju.now()
	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ju.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ju.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a session token and returns its claims. The token
// must be HS256, issued here, unexpired and name a user in a known role.
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return ju.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ju.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.UserID == "" || claims.Subject != claims.UserID || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
