package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const AjaxNonceAction = "payneteasy-ajax-nonce"

var ErrInvalidNonce = errors.New("Failed ajax validation.")

type nonceClaims struct {
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// NonceIssuer signs short-lived HS256 tokens bound to one action name.
type NonceIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewNonceIssuer(secret string, ttl time.Duration) *NonceIssuer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &NonceIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (n *NonceIssuer) Issue(action string) (string, error) {
	now := n.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, nonceClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(n.ttl)),
		},
	})

	signed, err := token.SignedString(n.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign nonce: %w", err)
	}
	return signed, nil
}

func (n *NonceIssuer) Verify(nonce, action string) error {
	if nonce == "" || len(n.secret) == 0 {
		return ErrInvalidNonce
	}

	var claims nonceClaims
	token, err := jwt.ParseWithClaims(nonce, &claims, func(token *jwt.Token) (interface{}, error) {
		return n.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(n.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidNonce
	}

	if claims.Action != action {
		return ErrInvalidNonce
	}
	return nil
}
