package oauthsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

var graphMeURL = "https://graph.microsoft.com/v1.0/me"

type Microsoft struct {
	conf *oauth2.Config
	// singleTenant is set when only accounts of our own directory can sign in.
	singleTenant bool
}

func NewMicrosoft(conf core.OAuthConfig) *Microsoft {
	if conf.MicrosoftClientID == "" {
		return &Microsoft{}
	}
	return &Microsoft{
		conf: &oauth2.Config{
			ClientID:     conf.MicrosoftClientID,
			ClientSecret: conf.MicrosoftClientSecret,
			RedirectURL:  conf.MicrosoftRedirectURL,
			Endpoint:     microsoft.AzureADEndpoint(conf.MicrosoftTenant),
			Scopes:       []string{"openid", "email", "profile", "User.Read"},
		},
		singleTenant: isSingleTenant(conf.MicrosoftTenant),
	}
}

func isSingleTenant(tenant string) bool {
	switch strings.ToLower(tenant) {
	case "", "common", "organizations", "consumers":
		return false
	}
	return true
}

func (m *Microsoft) Configured() bool { return m.conf != nil }

// AuthCodeURL is where the browser goes to sign in. state comes back to the callback untouched.
func (m *Microsoft) AuthCodeURL(state string) (string, error) {
	if m.conf == nil {
		return "", ErrNotConfigured
	}
	return m.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

type graphUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Exchange trades the callback code for a token and reads the signed-in user from Microsoft Graph.
func (m *Microsoft) Exchange(ctx context.Context, code string) (user.ProviderIdentity, error) {
	if m.conf == nil {
		return user.ProviderIdentity{}, ErrNotConfigured
	}
	tok, err := m.conf.Exchange(ctx, code)
	if err != nil {
		return user.ProviderIdentity{}, errors.Wrap(ErrInvalidToken, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, graphMeURL, nil)
	if err != nil {
		return user.ProviderIdentity{}, errors.Wrap(err, "building graph request")
	}
	res, err := m.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return user.ProviderIdentity{}, errors.Wrap(err, "calling graph")
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return user.ProviderIdentity{}, errors.Errorf("graph responded %d", res.StatusCode)
	}

	var gu graphUser
	if err := json.NewDecoder(res.Body).Decode(&gu); err != nil {
		return user.ProviderIdentity{}, errors.Wrap(err, "decoding graph user")
	}
	email := gu.Mail
	if email == "" {
		email = gu.UserPrincipalName
	}
	if gu.ID == "" || email == "" {
		return user.ProviderIdentity{}, errors.Wrap(ErrInvalidToken, "incomplete graph user")
	}

	ident := user.ProviderIdentity{
		Provider:      user.ProviderMicrosoft,
		Subject:       gu.ID,
		Email:         email,
		Name:          gu.DisplayName,
		EmailVerified: m.singleTenant,
	}
	// Any tenant admin can write mail and userPrincipalName.
	// Across tenants only an ID token email with a verified domain owner counts.
	if !m.singleTenant {
		if idEmail, ok := verifiedIDTokenEmail(tok); ok {
			ident.Email = idEmail
			ident.EmailVerified = true
		}
	}
	return ident, nil
}

// verifiedIDTokenEmail reads the email claim of the ID token when xms_edov vouches for it.
// The token comes straight from the token endpoint over TLS, so its signature is not checked again.
func verifiedIDTokenEmail(tok *oauth2.Token) (string, bool) {
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return "", false
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
		return "", false
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", false
	}
	switch edov := claims["xms_edov"].(type) {
	case bool:
		return email, edov
	case string:
		return email, edov == "1" || strings.EqualFold(edov, "true")
	case float64:
		return email, edov == 1
	}
	return "", false
}
