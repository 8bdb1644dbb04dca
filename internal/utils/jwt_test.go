package utils

import (
    "testing"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestAuthTokenRoundTrip(t *testing.T) {
    raw, err := NewAuthToken("s3cret", Identity{ID: 42, IsAdmin: true})
    require.NoError(t, err)

    id, err := ParseAuthToken("s3cret", raw)
    require.NoError(t, err)
    assert.Equal(t, Identity{ID: 42, IsAdmin: true}, id)
}

func TestAuthTokenCarriesOnlyIdentityClaims(t *testing.T) {
    raw, err := NewAuthToken("s3cret", Identity{ID: 7})
    require.NoError(t, err)

    claims := jwt.MapClaims{}
    _, _, err = jwt.NewParser().ParseUnverified(raw, claims)
    require.NoError(t, err)
    assert.Len(t, claims, 2)
    assert.Equal(t, "7", claims["_id"])
    assert.Equal(t, false, claims["isAdmin"])
}

func TestParseAuthTokenRejects(t *testing.T) {
    good, err := NewAuthToken("s3cret", Identity{ID: 1})
    require.NoError(t, err)

    none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"_id": "1", "isAdmin": true})
    unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
    require.NoError(t, err)

    noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"isAdmin": true}).SignedString([]byte("s3cret"))
    require.NoError(t, err)

    for name, raw := range map[string]string{
        "garbage":       "not-a-token",
        "wrong secret":  mustSign(t, "other", Identity{ID: 1}),
        "tampered":      good[:len(good)-2] + "xx",
        "alg none":      unsigned,
        "missing id":    noID,
    } {
        t.Run(name, func(t *testing.T) {
            _, err := ParseAuthToken("s3cret", raw)
            assert.ErrorIs(t, err, ErrInvalidToken)
        })
    }
}

func TestPasswordHashing(t *testing.T) {
    hash, err := HashPassword("12345", 4)
    require.NoError(t, err)
    assert.NotEqual(t, "12345", hash)
    assert.True(t, VerifyPassword(hash, "12345"))
    assert.False(t, VerifyPassword(hash, "54321"))
}

func mustSign(t *testing.T, secret string, id Identity) string {
    t.Helper()
    raw, err := NewAuthToken(secret, id)
    require.NoError(t, err)
    return raw
}
