// Package auth implements the gateway's edge bearer-token validation
// contract: JWKS-backed JWT verification and claims extraction, with no
// token issuance (spec.md §1 scopes token-issuance crypto out as an
// external collaborator). Grounded on
// llm-api/internal/infrastructure/auth's KeycloakValidator, generalized
// from a single Keycloak realm to any JWKS-publishing issuer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Principal is the subset of JWT claims the gateway's authorization
// decisions depend on.
type Principal struct {
	Subject   string
	Issuer    string
	Audience  []string
	Scopes    []string
	TokenID   string
	ExpiresAt time.Time
}

// HasScope reports whether the principal was granted scope.
func (p *Principal) HasScope(scope string) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Validator verifies bearer tokens against a JWKS endpoint and extracts
// Principal claims.
type Validator struct {
	issuer    string
	audience  string
	clockSkew time.Duration
	logger    zerolog.Logger
	jwks      atomic.Pointer[keyfunc.JWKS]
}

const (
	jwksInitialRetryInterval   = time.Second
	jwksInitialRetryMaxBackoff = 10 * time.Second
	jwksInitialRetryTimeout    = 2 * time.Minute
	jwksInitialRetryMultiplier = 2.0
)

// NewValidator fetches the JWKS at jwksURL (with bounded retry) and returns
// a ready-to-use Validator.
func NewValidator(ctx context.Context, jwksURL, issuer, audience string, refreshEvery, clockSkew time.Duration, logger zerolog.Logger) (*Validator, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url is required")
	}

	v := &Validator{issuer: issuer, audience: audience, clockSkew: clockSkew, logger: logger}
	if err := v.initJWKS(ctx, jwksURL, refreshEvery); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Validator) initJWKS(ctx context.Context, jwksURL string, refreshEvery time.Duration) error {
	options := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			if err != nil {
				v.logger.Error().Err(err).Msg("jwks refresh failed")
			}
		},
		RefreshInterval:   refreshEvery,
		RefreshUnknownKID: true,
		Ctx:               ctx,
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = jwksInitialRetryInterval
	policy.MaxInterval = jwksInitialRetryMaxBackoff
	policy.MaxElapsedTime = jwksInitialRetryTimeout
	policy.Multiplier = jwksInitialRetryMultiplier

	attempt := 0
	operation := func() error {
		attempt++
		jwks, err := keyfunc.Get(jwksURL, options)
		if err != nil {
			v.logger.Warn().Err(err).Str("jwks_url", jwksURL).Int("attempt", attempt).
				Msg("initial jwks fetch failed, retrying")
			return err
		}
		v.jwks.Store(jwks)
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	return nil
}

// Validate parses and verifies rawToken, returning its Principal claims.
func (v *Validator) Validate(_ context.Context, rawToken string) (*Principal, error) {
	jwks := v.jwks.Load()
	if jwks == nil {
		return nil, errors.New("jwks not initialised")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, err := parser.ParseWithClaims(rawToken, jwt.MapClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	iss, _ := claims["iss"].(string)
	if v.issuer != "" && iss != v.issuer {
		return nil, fmt.Errorf("issuer mismatch %s", iss)
	}

	audiences, err := extractAudience(claims, v.audience)
	if err != nil {
		return nil, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("sub claim missing")
	}

	var scopes []string
	if scopeStr, ok := claims["scope"].(string); ok && scopeStr != "" {
		scopes = strings.Split(scopeStr, " ")
	}

	expires := numericTime(claims["exp"])
	now := time.Now().UTC()
	if !expires.IsZero() && now.After(expires.Add(v.clockSkew)) {
		return nil, errors.New("token expired")
	}
	if nbf := numericTime(claims["nbf"]); !nbf.IsZero() && now.Add(v.clockSkew).Before(nbf) {
		return nil, errors.New("token not yet valid")
	}

	return &Principal{
		Subject:   sub,
		Issuer:    iss,
		Audience:  audiences,
		Scopes:    scopes,
		TokenID:   claimString(claims["jti"]),
		ExpiresAt: expires,
	}, nil
}

func extractAudience(claims jwt.MapClaims, required string) ([]string, error) {
	audRaw, ok := claims["aud"]
	if !ok {
		return nil, nil
	}
	switch val := audRaw.(type) {
	case string:
		if required != "" && val != required {
			return nil, errors.New("audience mismatch")
		}
		return []string{val}, nil
	case []interface{}:
		var audiences []string
		found := required == ""
		for _, item := range val {
			if s, ok := item.(string); ok {
				audiences = append(audiences, s)
				if s == required {
					found = true
				}
			}
		}
		if !found {
			return nil, errors.New("audience mismatch")
		}
		return audiences, nil
	default:
		return nil, fmt.Errorf("aud claim unsupported type %T", val)
	}
}

func numericTime(v any) time.Time {
	switch n := v.(type) {
	case float64:
		return time.Unix(int64(n), 0).UTC()
	case jwt.NumericDate:
		return n.Time
	default:
		return time.Time{}
	}
}

func claimString(v any) string {
	s, _ := v.(string)
	return s
}

// BearerToken strips a "Bearer " prefix from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix)), true
}
