package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

func validRequest() IntrospectionRequest {
	return IntrospectionRequest{
		Token:               "opaque",
		ClientID:            "client-1",
		ClientAssertionType: clientAuthDomain.AssertionTypeJWTBearer,
		ClientAssertion:     "a.b.c",
	}
}

func TestIntrospectionRequest_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		r := validRequest()
		assert.NoError(t, r.Validate())
	})

	t.Run("MissingToken", func(t *testing.T) {
		r := validRequest()
		r.Token = ""
		assert.Error(t, r.Validate())
	})

	t.Run("UnknownHint", func(t *testing.T) {
		r := validRequest()
		r.TokenTypeHint = "id_token"
		assert.Error(t, r.Validate())
	})

	t.Run("WrongAssertionType", func(t *testing.T) {
		r := validRequest()
		r.ClientAssertionType = "urn:ietf:params:oauth:client-assertion-type:saml2-bearer"
		assert.Error(t, r.Validate())
	})

	t.Run("MissingAssertion", func(t *testing.T) {
		r := validRequest()
		r.ClientAssertion = ""
		assert.Error(t, r.Validate())
	})
}

func TestIntrospectionRequest_LookupOrder(t *testing.T) {
	r := validRequest()
	assert.Equal(t, []tokenDomain.TokenType{tokenDomain.TokenAccess, tokenDomain.TokenRefresh}, r.LookupOrder())

	r.TokenTypeHint = HintRefreshToken
	assert.Equal(t, []tokenDomain.TokenType{tokenDomain.TokenRefresh, tokenDomain.TokenAccess}, r.LookupOrder())
}

func TestIntrospectionRequest_ClientRequest(t *testing.T) {
	r := validRequest()
	req := r.ClientRequest()
	assert.Equal(t, "client-1", req.ClientID)
	assert.Equal(t, "a.b.c", req.Assertion)
}
