package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rps_backend/internal/common"
	"rps_backend/internal/config"
	"rps_backend/internal/user"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// IdentityVerifier turns a third-party ID token into verified claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*user.Claims, error)
}

// tokenValidator is the part of *idtoken.Validator the verifier uses.
type tokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks Google Sign-In ID tokens: signature and expiry via
// Google's published certificates, then audience, issuer and hosted domain.
type GoogleVerifier struct {
	validator    tokenValidator
	clientID     string
	hostedDomain string
	logger       *zap.Logger
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)

// NewGoogleVerifier creates a verifier accepting tokens issued to cfg.GoogleClientID.
func NewGoogleVerifier(cfg *config.Config, logger *zap.Logger) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(context.Background(),
		option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("create google id token validator: %w", err)
	}
	return newGoogleVerifier(v, cfg.GoogleClientID, cfg.GoogleHostedDomain, logger), nil
}

func newGoogleVerifier(v tokenValidator, clientID, hostedDomain string, logger *zap.Logger) *GoogleVerifier {
	return &GoogleVerifier{
		validator:    v,
		clientID:     clientID,
		hostedDomain: hostedDomain,
		logger:       logger.Named("GoogleVerifier"),
	}
}

// Verify validates idToken and extracts the profile claims. Absent claims are
// returned as empty strings; deciding which ones are mandatory is up to the caller.
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*user.Claims, error) {
	payload, err := g.validator.Validate(ctx, idToken, g.clientID)
	if err != nil {
		g.logger.Warn("Google ID token validation failed", zap.Error(err))
		return nil, common.ErrUnauthorized.WithDetails("Invalid Google ID token.")
	}
	if !googleIssuers[payload.Issuer] {
		g.logger.Warn("Google ID token has unexpected issuer", zap.String("issuer", payload.Issuer))
		return nil, common.ErrUnauthorized.WithDetails("Invalid Google ID token issuer.")
	}
	if hd := stringClaim(payload.Claims, "hd"); hd == "" || hd != g.hostedDomain {
		g.logger.Warn("Google account outside hosted domain",
			zap.String("hd", hd),
			zap.String("expected", g.hostedDomain),
		)
		return nil, common.ErrUnauthorized.WithDetails("Google account is not part of the accepted domain.")
	}

	return &user.Claims{
		Subject:    payload.Subject,
		Email:      stringClaim(payload.Claims, "email"),
		Name:       stringClaim(payload.Claims, "name"),
		Picture:    stringClaim(payload.Claims, "picture"),
		GivenName:  stringClaim(payload.Claims, "given_name"),
		FamilyName: stringClaim(payload.Claims, "family_name"),
		Locale:     stringClaim(payload.Claims, "locale"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
