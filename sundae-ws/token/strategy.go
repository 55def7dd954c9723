package token

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Strategy verifies one class of token.
type Strategy interface {
	Verify(ctx context.Context, credential string) (*Claims, error)
}

// CognitoStrategy accepts RS256 tokens from one user pool with the given
// token_use. Id tokens carry the app client in aud, access tokens in client_id.
type CognitoStrategy struct {
	Config   Config
	TokenUse string
	Keyfunc  jwt.Keyfunc
}

func (s CognitoStrategy) Verify(_ context.Context, credential string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.Config.Issuer()),
		jwt.WithExpirationRequired(),
	}
	if s.TokenUse == TokenUseID {
		opts = append(opts, jwt.WithAudience(s.Config.ClientID))
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(credential, &claims, s.Keyfunc, opts...); err != nil {
		return nil, fmt.Errorf("%v token: %w", s.TokenUse, err)
	}

	if claims.TokenUse != s.TokenUse {
		return nil, fmt.Errorf("%v token: unexpected token_use %q", s.TokenUse, claims.TokenUse)
	}
	if s.TokenUse == TokenUseAccess && claims.ClientID != s.Config.ClientID {
		return nil, fmt.Errorf("%v token: unexpected client_id %q", s.TokenUse, claims.ClientID)
	}

	return &claims, nil
}
