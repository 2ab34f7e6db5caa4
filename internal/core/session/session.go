// Package session issues and reads the self-contained signed tokens that
// carry a logged-in user's identity and role.
//
// Tokens are stateless: there is no server-side session store and no
// revocation list. The role is captured at issuance, so a role change by an
// admin only takes effect when the subject logs in again. That staleness
// window is a documented trade-off of this design, bounded by the token TTL.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userdir/directory-system/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// Claims is the verified content of a session token.
type Claims struct {
	UserID string      `json:"sub"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a server-held HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue mints a signed token for user, embedding the user's role as it is at
// this moment.
func (m *Manager) Issue(user *domain.User) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Read verifies token and returns its claims. It fails closed: a malformed,
// unsigned, tampered or expired token yields (nil, ErrUnauthorized), never
// partial claims. Only HS256 is accepted, so a token re-signed under a
// different algorithm is rejected before its claims are looked at.
func (m *Manager) Read(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// TTL exposes the configured token lifetime, used to set the cookie expiry.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
