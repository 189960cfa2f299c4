package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

var ErrMissingSubject = errors.New("token has no subject")

// Claims represents the JWT claims issued by the storefront. The subject
// is the user id; back-office and service tokens also carry a role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// JWTService validates bearer tokens and resolves the user they belong to.
type JWTService struct {
	secret string
	issuer string
	log    *zap.Logger
}

// NewJWTService creates a new JWTService instance.
func NewJWTService(secret, issuer string, log *zap.Logger) *JWTService {
	return &JWTService{
		secret: secret,
		issuer: issuer,
		log:    log,
	}
}

// GenerateToken creates a signed HS256 token for userID valid for ttl.
// role is empty for storefront shoppers.
func (s *JWTService) GenerateToken(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and returns the user id carried in its
// subject along with its role.
func (s *JWTService) ValidateToken(tokenString string) (domain.Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	}, opts...)
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return domain.Principal{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Principal{}, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return domain.Principal{}, ErrMissingSubject
	}

	return domain.Principal{UserID: claims.Subject, Role: claims.Role}, nil
}
