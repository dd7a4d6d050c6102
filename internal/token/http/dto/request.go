// Package dto provides data transfer objects for token HTTP handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
	customValidation "github.com/allisson/idcore/internal/validation"
)

// Token type hints accepted by the introspection endpoint.
const (
	HintAccessToken  = "access_token"
	HintRefreshToken = "refresh_token"
)

// IntrospectionRequest is a form-encoded token introspection request
// authenticated with a client assertion.
type IntrospectionRequest struct {
	Token               string `form:"token"`
	TokenTypeHint       string `form:"token_type_hint"`
	ClientID            string `form:"client_id"`
	ClientAssertionType string `form:"client_assertion_type"`
	ClientAssertion     string `form:"client_assertion"`
}

// Validate checks if the introspection request is valid.
func (r *IntrospectionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NoWhitespace,
			validation.Length(1, 512),
		),
		validation.Field(&r.TokenTypeHint,
			validation.In(HintAccessToken, HintRefreshToken),
		),
		validation.Field(&r.ClientAssertionType,
			validation.Required,
			validation.In(clientAuthDomain.AssertionTypeJWTBearer),
		),
		validation.Field(&r.ClientAssertion, validation.Required),
	)
}

// ClientRequest converts the request into a client authentication request.
func (r *IntrospectionRequest) ClientRequest() *clientAuthDomain.Request {
	return &clientAuthDomain.Request{
		ClientID:      r.ClientID,
		AssertionType: r.ClientAssertionType,
		Assertion:     r.ClientAssertion,
	}
}

// LookupOrder returns the token types to try, hinted type first.
func (r *IntrospectionRequest) LookupOrder() []tokenDomain.TokenType {
	if r.TokenTypeHint == HintRefreshToken {
		return []tokenDomain.TokenType{tokenDomain.TokenRefresh, tokenDomain.TokenAccess}
	}
	return []tokenDomain.TokenType{tokenDomain.TokenAccess, tokenDomain.TokenRefresh}
}
