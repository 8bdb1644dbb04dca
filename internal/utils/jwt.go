package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "strconv"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Identity is the authenticated caller as decoded from an auth token.  It
// is attached to the request context by the auth middleware and read by
// handlers; there is no other place the current user is kept.
type Identity struct {
    ID      uint64 // users.id of the caller
    IsAdmin bool   // true for administrators
}

// ErrInvalidToken is returned for tokens that are malformed, signed with an
// unexpected algorithm or key, or carry unusable claims.
var ErrInvalidToken = errors.New("invalid token")

// Claim names written into every auth token.  A token carries exactly
// these two claims and no expiry.
const (
    claimID      = "_id"
    claimIsAdmin = "isAdmin"
)

// NewAuthToken builds and signs an HS256 JWT for the given identity.
func NewAuthToken(secret string, id Identity) (string, error) {
    claims := jwt.MapClaims{
        claimID:      strconv.FormatUint(id.ID, 10),
        claimIsAdmin: id.IsAdmin,
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseAuthToken verifies the signature of raw and returns the identity it
// encodes.  Only HMAC signed tokens are accepted.
func ParseAuthToken(secret, raw string) (Identity, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Identity{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Identity{}, ErrInvalidToken
    }

    var out Identity
    switch v := claims[claimID].(type) {
    case string:
        n, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            return Identity{}, ErrInvalidToken
        }
        out.ID = n
    case float64:
        // numeric ids decode as float64
        out.ID = uint64(v)
    default:
        return Identity{}, ErrInvalidToken
    }
    if out.ID == 0 {
        return Identity{}, ErrInvalidToken
    }
    out.IsAdmin, _ = claims[claimIsAdmin].(bool)
    return out, nil
}
