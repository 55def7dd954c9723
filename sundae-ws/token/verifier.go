package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier tries its strategies in order; the first success wins.
type Verifier struct {
	Strategies []Strategy
}

// NewVerifier accepts id tokens, then access tokens, for the configured pool.
func NewVerifier(config Config, kf jwt.Keyfunc) *Verifier {
	return &Verifier{
		Strategies: []Strategy{
			CognitoStrategy{Config: config, TokenUse: TokenUseID, Keyfunc: kf},
			CognitoStrategy{Config: config, TokenUse: TokenUseAccess, Keyfunc: kf},
		},
	}
}

// NewCognitoVerifier resolves signing keys from the pool's JWKS endpoint. The
// key set is refreshed in the background until ctx is done.
func NewCognitoVerifier(ctx context.Context, config Config) (*Verifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{config.JWKSURL()})
	if err != nil {
		return nil, fmt.Errorf("unable to load jwks from %v: %w", config.JWKSURL(), err)
	}
	return NewVerifier(config, k.Keyfunc), nil
}

func (v *Verifier) Verify(ctx context.Context, credential string) (*Claims, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: %w", ErrVerification, ErrMissingCredential)
	}

	var errs []error
	for _, strategy := range v.Strategies {
		claims, err := strategy.Verify(ctx, credential)
		if err == nil {
			return claims, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no strategies configured", ErrVerification)
	}
	return nil, fmt.Errorf("%w: %w", ErrVerification, errors.Join(errs...))
}
