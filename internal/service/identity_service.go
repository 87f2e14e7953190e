package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/slot-booking-api/internal/models"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
)

// IdentityConfig configures caller tokens.
type IdentityConfig struct {
	Secret   string
	Issuer   string
	Lifetime time.Duration
}

// IdentityService issues and validates HS256 caller tokens.
type IdentityService struct {
	cfg IdentityConfig
	now func() time.Time
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(cfg IdentityConfig) *IdentityService {
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = 24 * time.Hour
	}
	return &IdentityService{cfg: cfg, now: time.Now}
}

// Issue signs a token whose subject is ownerID.
func (s *IdentityService) Issue(ownerID, name string) (string, time.Time, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return "", time.Time{}, errors.New("owner id is required")
	}
	if s.cfg.Secret == "" {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.cfg.Lifetime)
	claims := &models.CallerClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses a token and returns its claims.
func (s *IdentityService) Validate(token string) (*models.CallerClaims, error) {
	if s.cfg.Secret == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "caller identity is not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &models.CallerClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := parsed.Claims.(*models.CallerClaims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
