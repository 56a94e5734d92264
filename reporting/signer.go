package reporting

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAudience     = "https://oauth2.googleapis.com/token"
	ReadOnlyScope     = "https://www.googleapis.com/auth/analytics.readonly"
	AssertionLifetime = 3600 * time.Second
)

// SignAssertion builds the RS256 JWT-bearer assertion for clientEmail, valid
// for AssertionLifetime from now. The key may be PKCS#1 or PKCS#8 PEM.
func SignAssertion(clientEmail, privateKeyPEM string, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("failed to parse service account key: %w", err)
	}

	issuedAt := now.Unix()
	claims := jwt.MapClaims{
		"iss":   clientEmail,
		"scope": ReadOnlyScope,
		"aud":   TokenAudience,
		"iat":   issuedAt,
		"exp":   issuedAt + int64(AssertionLifetime/time.Second),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}
