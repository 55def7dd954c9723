// Package token verifies the bearer credentials presented when a websocket
// connects. Credentials are Cognito user pool JWTs; either an id token or an
// access token is accepted.
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthenticationKey is the header, and fallback query parameter, carrying the credential.
const AuthenticationKey = "Authentication"

const (
	TokenUseID     = "id"
	TokenUseAccess = "access"
)

var (
	// ErrVerification is returned when no strategy accepts a credential.
	ErrVerification = errors.New("unable to verify token")

	ErrMissingCredential = errors.New("missing credential")
)

// Claims is the verified claim set of a Cognito token.
type Claims struct {
	TokenUse string   `json:"token_use"`
	ClientID string   `json:"client_id,omitempty"`
	Username string   `json:"cognito:username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Groups   []string `json:"cognito:groups,omitempty"`
	jwt.RegisteredClaims
}

// Sites returns the distinct, non-empty group memberships in claim order.
func (c *Claims) Sites() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Groups))
	sites := make([]string, 0, len(c.Groups))
	for _, group := range c.Groups {
		if group == "" {
			continue
		}
		if _, ok := seen[group]; ok {
			continue
		}
		seen[group] = struct{}{}
		sites = append(sites, group)
	}
	return sites
}

// Credential returns the Authentication header, falling back to the query
// parameter of the same name.
func Credential(headers, query map[string]string) string {
	if v, ok := lookup(headers, AuthenticationKey); ok && v != "" {
		return v
	}
	v, _ := lookup(query, AuthenticationKey)
	return v
}

func lookup(m map[string]string, key string) (string, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Config identifies the user pool and app client tokens must be issued for.
type Config struct {
	Region     string `json:"region"`
	UserPoolID string `json:"userPoolId"`
	ClientID   string `json:"clientId"`
}

func (c Config) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%v.amazonaws.com/%v", c.Region, c.UserPoolID)
}

func (c Config) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}

func (c Config) Validate() error {
	switch {
	case c.Region == "":
		return fmt.Errorf("cognito region is required")
	case c.UserPoolID == "":
		return fmt.Errorf("cognito user pool id is required")
	case c.ClientID == "":
		return fmt.Errorf("cognito user pool client id is required")
	}
	return nil
}
