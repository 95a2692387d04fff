// Package auth verifies bearer tokens and turns their claims into a
// domain.Principal.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// USGSGroup is granted to every user with a USGS email address.
const USGSGroup = "usgs"

var usgsDomains = []string{"@usgs.gov", "@contractor.usgs.gov"}

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned for malformed, unsigned, or expired tokens.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Claims are the registry's access token claims.
type Claims struct {
	Email       string   `json:"email,omitempty"`
	Groups      []string `json:"groups,omitempty"`
	Superuser   bool     `json:"superuser,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens signed with a shared key.
type Verifier struct {
	key        []byte
	superusers map[string]bool
}

// NewVerifier returns a Verifier for key. Callers whose email appears in
// superuserEmails are promoted to superuser regardless of their claims.
func NewVerifier(key string, superuserEmails []string) *Verifier {
	su := make(map[string]bool, len(superuserEmails))
	for _, e := range superuserEmails {
		su[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &Verifier{key: []byte(key), superusers: su}
}

// Verify parses token and returns the principal it identifies.
func (v *Verifier) Verify(token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, ErrMissingToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.key, nil
	}, jwt.WithTimeFunc(domain.Now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, fmt.Errorf("%w: token has expired", ErrInvalidToken)
		}
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Principal{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return v.principal(claims), nil
}

func (v *Verifier) principal(c *Claims) domain.Principal {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	p := domain.Principal{
		Username:  c.Subject,
		Email:     email,
		Superuser: c.Superuser || (email != "" && v.superusers[email]),
		Groups:    slices.Clone(c.Groups),
	}
	if isUSGS(email) && !slices.ContainsFunc(p.Groups, func(g string) bool { return strings.EqualFold(g, USGSGroup) }) {
		p.Groups = append(p.Groups, USGSGroup)
	}
	for _, perm := range c.Permissions {
		p.Permissions = append(p.Permissions, domain.Permission(strings.ToLower(perm)))
	}
	if len(p.Permissions) == 0 && len(p.Groups) > 0 {
		p.Permissions = slices.Clone(domain.AllPermissions)
	}
	return p
}

func isUSGS(email string) bool {
	for _, d := range usgsDomains {
		if strings.HasSuffix(email, d) {
			return true
		}
	}
	return false
}

// Issue signs a token for p that expires after ttl. It backs the CLI's token
// command and tests.
func (v *Verifier) Issue(p domain.Principal, ttl time.Duration) (string, error) {
	now := domain.Now()
	claims := Claims{
		Email:     p.Email,
		Groups:    p.Groups,
		Superuser: p.Superuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	for _, perm := range p.Permissions {
		claims.Permissions = append(claims.Permissions, string(perm))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
