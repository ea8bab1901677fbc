package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("auth: invalid or expired session")

const issuer = "nobounce-admin"

type claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessions(key string, ttl time.Duration) *Sessions {
	return &Sessions{key: []byte(key), ttl: ttl, now: time.Now}
}

// SessionsFromFile uses the cookie section of auth.yaml.
func SessionsFromFile(f *File) *Sessions {
	return NewSessions(f.Cookie.Key, time.Duration(f.Cookie.ExpiryDays)*24*time.Hour)
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

func (s *Sessions) Issue(a Admin) (token string, exp time.Time, err error) {
	now := s.now().UTC()
	exp = now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:  a.Name,
		Email: a.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   a.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	token, err = t.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, exp, nil
}

func (s *Sessions) Parse(token string) (Admin, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Admin{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if c.Subject == "" {
		return Admin{}, ErrInvalidSession
	}
	return Admin{Username: c.Subject, Name: c.Name, Email: c.Email}, nil
}
