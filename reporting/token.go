package reporting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const GrantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

var ErrNoAccessToken = errors.New("token response has no access_token")

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeToken trades a signed assertion for a bearer token. There is no
// retry; the caller decides what a failure means.
func (c *Client) ExchangeToken(ctx context.Context, assertion string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	form := url.Values{
		"grant_type": {GrantTypeJWTBearer},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return tok.AccessToken, nil
}
