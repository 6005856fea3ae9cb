// Package identity verifies bearer tokens for the auth middleware.
package identity

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/profilekit/profilekit/internal/tokens"
	"github.com/profilekit/profilekit/pkg/middleware"
)

// claimsToken exposes parsed claims through the middleware.Token interface.
type claimsToken struct {
	claims *tokens.Claims
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// JWTVerifier accepts access tokens minted by this service.
type JWTVerifier struct {
	secret string
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims, err := tokens.ParseAccessToken(v.secret, raw)
	if err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}

// Chain tries each verifier in order and returns the first success.
type Chain []middleware.Verifier

func (c Chain) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if len(c) == 0 {
		return nil, errors.New("no token verifier configured")
	}
	var errs []error
	for _, v := range c {
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
