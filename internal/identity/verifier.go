package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrTokenEmpty   = errors.New("access token is required")
	ErrUnauthorized = errors.New("access token rejected by identity provider")
	ErrUpstream     = errors.New("identity provider unavailable")
)

// Claims is the subset of OIDC userinfo the service keeps.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

type Verifier struct {
	httpClient  *resty.Client
	userInfoURL string
	logger      *zap.Logger
}

func NewVerifier(userInfoURL string, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(1).
		SetRetryWaitTime(250*time.Millisecond).
		SetHeader("Accept", "application/json")

	return &Verifier{
		httpClient:  client,
		userInfoURL: strings.TrimSpace(userInfoURL),
		logger:      logger.Named("identity"),
	}
}

// Verify exchanges the client's access token for the provider's userinfo claims.
func (verifier *Verifier) Verify(ctx context.Context, accessToken string) (Claims, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return Claims{}, ErrTokenEmpty
	}
	if verifier.userInfoURL == "" {
		return Claims{}, fmt.Errorf("%w: userinfo url is not configured", ErrUpstream)
	}

	claims := Claims{}
	resp, err := verifier.httpClient.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&claims).
		Get(verifier.userInfoURL)
	if err != nil {
		verifier.logger.Warn("userinfo request failed", zap.Error(err))
		return Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Claims{}, ErrUnauthorized
	case resp.IsError():
		verifier.logger.Warn("userinfo returned error status", zap.Int("status_code", status))
		return Claims{}, fmt.Errorf("%w: status %d", ErrUpstream, status)
	}

	claims.Subject = strings.TrimSpace(claims.Subject)
	claims.Email = strings.TrimSpace(claims.Email)
	claims.Name = strings.TrimSpace(claims.Name)
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: userinfo response has no subject", ErrUnauthorized)
	}
	return claims, nil
}
