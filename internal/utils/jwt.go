package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // errors reports a missing signing secret
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrNoSecret is returned when a token is requested without a signing secret.
var ErrNoSecret = errors.New("jwt secret not configured")

// AccessToken represents a signed JWT access token along with its expiry.
// Admin clients send it as "Authorization: Bearer <Token>" on the
// add-range and clear endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT.  It takes the signing
// secret, the subject (admin login name), the role, and a TTL in minutes.
// The JWT includes the standard claims sub, exp and iat plus role.
func NewAccessToken(secret, subject, role string, ttlMin int) (AccessToken, error) {
    if secret == "" {
        return AccessToken{}, ErrNoSecret
    }
    if ttlMin <= 0 {
        ttlMin = 60
    }
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  subject,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
