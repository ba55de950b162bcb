// Package auth issues and validates the signed tokens returned by login.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yuwenwww/membervault/internal/common"
)

// Claims carries the standard registered claims plus the member ID the token
// was issued for.
type Claims struct {
	jwt.RegisteredClaims
	MemberID string
}

// GenerateToken signs an HS256 token for the given member, valid for
// validityDuration from now.
func GenerateToken(memberID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		MemberID: memberID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetMemberIDFromToken parses and validates tokenString and returns the
// member ID it carries.
func GetMemberIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.MemberID, nil
}
