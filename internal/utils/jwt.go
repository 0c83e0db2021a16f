package utils // package utils provides token and hashing helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT together with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims is the identity embedded in every token at login time. The role is
// fixed at issuance; a role change only takes effect once the user logs in
// again and receives a fresh token.
type Claims struct {
	UserID uint64
	Email  string
	Name   string
	Role   string
}

// NewAccessToken signs a token carrying the user's id, email, display name
// and role, expiring after ttlHours.
func NewAccessToken(secret string, c Claims, ttlHours int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlHours) * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"name":  c.Name,
		"role":  c.Role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

var errInvalidToken = errors.New("invalid token")

// ParseAccessToken verifies the signature and expiry of a token and returns
// the embedded claims. Any malformed, tampered or expired token yields an
// error; callers map it to 401 without distinguishing the cause.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, errInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errInvalidToken
	}
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return Claims{}, errInvalidToken
	}
	c := Claims{UserID: uint64(sub)}
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	c.Role, _ = mc["role"].(string)
	if c.Role == "" {
		return Claims{}, errInvalidToken
	}
	return c, nil
}
