package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrRejected is returned for any credential that cannot be admitted:
// missing, malformed, badly signed or expired.
var ErrRejected = errors.New("auth: credential rejected")

const tokenTTL = 24 * time.Hour

// Claims is the identity carried by a bearer token: who the subject is and
// which role it may register as.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates and issues HMAC-signed bearer tokens.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the signature and expiry of a bearer token and returns the
// claims it carries. Any failure is reported as ErrRejected; the caller must
// not admit the connection.
func (v *Verifier) Verify(credential string) (*Claims, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: empty token", ErrRejected)
	}

	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrRejected)
	}
	return claims, nil
}

// Issue signs a token for the given subject, valid for 24 hours.
func (v *Verifier) Issue(subjectID, username, role string) (string, error) {
	now := time.Now().In(time.UTC)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString(v.secret)
}
