// Package oauthsvc verifies sign-ins with Google and Microsoft accounts.
package oauthsvc

import (
	"context"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

var (
	ErrNotConfigured = errors.New("sign-in provider not configured")
	ErrInvalidToken  = errors.New("invalid identity token")
)

type Google struct {
	clientID string
	verifier googleAuthIDTokenVerifier.Verifier
}

func NewGoogle(conf core.OAuthConfig) *Google {
	return &Google{clientID: conf.GoogleClientID}
}

// VerifyIDToken checks a Google ID token issued to our client and returns who signed in.
func (g *Google) VerifyIDToken(_ context.Context, idToken string) (user.ProviderIdentity, error) {
	if g.clientID == "" {
		return user.ProviderIdentity{}, ErrNotConfigured
	}
	if err := g.verifier.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return user.ProviderIdentity{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return user.ProviderIdentity{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if claims.Email == "" {
		return user.ProviderIdentity{}, errors.Wrap(ErrInvalidToken, "no email claim")
	}
	return user.ProviderIdentity{
		Provider:      user.ProviderGoogle,
		Subject:       claims.Sub,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
	}, nil
}
