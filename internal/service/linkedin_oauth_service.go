package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/config"
	"github.com/markbates/goth/providers/linkedin"
)

// LinkedInScopes is the fixed scope set requested on every connect.
var LinkedInScopes = []string{"openid", "profile", "email", "w_member_social"}

type OAuthGrant struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	ExpiresAt    time.Time
}

type OAuthServiceInterface interface {
	AuthorizationURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (*OAuthGrant, error)
}

// LinkedInOAuthService runs the authorization-code flow through goth's
// LinkedIn provider. State handling stays with the caller.
type LinkedInOAuthService struct {
	provider *linkedin.Provider
}

func NewLinkedInOAuthService(cfg *config.LinkedInConfig) *LinkedInOAuthService {
	return &LinkedInOAuthService{
		provider: linkedin.New(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI, LinkedInScopes...),
	}
}

func (s *LinkedInOAuthService) AuthorizationURL(state string) (string, error) {
	sess, err := s.provider.BeginAuth(state)
	if err != nil {
		return "", errors.Wrap(err, "begin linkedin auth")
	}
	return sess.GetAuthURL()
}

func (s *LinkedInOAuthService) Exchange(ctx context.Context, code string) (*OAuthGrant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess := &linkedin.Session{}
	if _, err := sess.Authorize(s.provider, url.Values{"code": {code}}); err != nil {
		return nil, errors.Wrap(err, "exchange linkedin authorization code")
	}
	if sess.AccessToken == "" {
		return nil, errors.New("linkedin returned an empty access token")
	}
	expiresAt := sess.ExpiresAt
	if expiresAt.IsZero() {
		// LinkedIn member tokens live 60 days.
		expiresAt = time.Now().Add(60 * 24 * time.Hour)
	}
	return &OAuthGrant{
		AccessToken: sess.AccessToken,
		Scope:       strings.Join(LinkedInScopes, " "),
		ExpiresAt:   expiresAt,
	}, nil
}
