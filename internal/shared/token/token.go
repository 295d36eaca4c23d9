package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalid = errors.New("token is invalid")
	ErrExpired = errors.New("token is expired")
)

// Subject is the identity embedded in a session token.
type Subject struct {
	UserID       string
	StoreID      string
	Role         string
	IsSuperAdmin bool
}

type Claims struct {
	UserID       string `json:"user_id"`
	StoreID      string `json:"store_id"`
	Role         string `json:"role"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	TokenType    string `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) Subject() Subject {
	return Subject{
		UserID:       c.UserID,
		StoreID:      c.StoreID,
		Role:         c.Role,
		IsSuperAdmin: c.IsSuperAdmin,
	}
}

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// Issue signs an HS256 token of the given type for sub.
func (m *Manager) Issue(sub Subject, tokenType string) (string, error) {
	ttl := m.accessTTL
	if tokenType == TypeRefresh {
		ttl = m.refreshTTL
	}

	now := m.now()
	claims := Claims{
		UserID:       sub.UserID,
		StoreID:      sub.StoreID,
		Role:         sub.Role,
		IsSuperAdmin: sub.IsSuperAdmin,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// IssuePair returns a fresh access and refresh token.
func (m *Manager) IssuePair(sub Subject) (access string, refresh string, err error) {
	access, err = m.Issue(sub, TypeAccess)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.Issue(sub, TypeRefresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Parse verifies tokenString and requires it to be of wantType.
func (m *Manager) Parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !t.Valid || claims.UserID == "" || claims.TokenType != wantType {
		return nil, ErrInvalid
	}
	return claims, nil
}
