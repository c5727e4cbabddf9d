package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Identity is the set of claims carried by every auth credential.
type Identity struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret []byte) *Tokens {
	return &Tokens{
		secret: secret,
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

func (t *Tokens) Sign(id Identity) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":    id.UserID,
		"email":     id.Email,
		"firstName": id.FirstName,
		"lastName":  id.LastName,
		"iat":       now.Unix(),
		"exp":       now.Add(t.ttl).Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and that all four identity claims are
// present strings. Any failure yields ErrInvalidToken.
func (t *Tokens) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	var id Identity
	for key, dst := range map[string]*string{
		"userId":    &id.UserID,
		"email":     &id.Email,
		"firstName": &id.FirstName,
		"lastName":  &id.LastName,
	} {
		v, ok := claims[key].(string)
		if !ok {
			return Identity{}, ErrInvalidToken
		}
		*dst = v
	}
	return id, nil
}
