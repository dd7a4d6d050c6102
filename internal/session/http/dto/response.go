// Package dto provides data transfer objects for SSO HTTP handlers.
package dto

import (
	"time"

	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// AccessTokenResponse is returned when a session is resumed from its cookie.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// MapTokenToAccessTokenResponse converts an issued access token into the
// response body. ExpiresIn never goes below zero.
func MapTokenToAccessTokenResponse(token *tokenDomain.Token, now time.Time) AccessTokenResponse {
	var expiresIn int64
	if token.ExpiresAt != nil {
		expiresIn = int64(token.ExpiresAt.Sub(now).Seconds())
		if expiresIn < 0 {
			expiresIn = 0
		}
	}
	return AccessTokenResponse{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}
}
