package service

import (
	"encoding/base64"
	"strings"
	"time"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// ClaimsContext gathers everything claim assembly reads. User, Organization,
// Permissions and URLPermissions are only consulted when a granted scope or
// the client type calls for them.
type ClaimsContext struct {
	Token          *tokenDomain.Token
	Session        *sessionDomain.AuthSession
	Application    *directoryDomain.Application
	Organization   *directoryDomain.Organization
	User           *directoryDomain.User
	Permissions    []directoryDomain.Permission
	URLPermissions []string

	MaxTransitTime      time.Duration
	FingerprintEnabled  bool
	URLPermissionsScope string
}

// IsClientCredentials reports whether the token was issued to the client itself.
func (c *ClaimsContext) IsClientCredentials() bool {
	return c.Token.SubjectID == c.Application.ClientID
}

// NeedsUser reports whether any granted scope reads user attributes.
func (c *ClaimsContext) NeedsUser() bool {
	if c.IsClientCredentials() {
		return false
	}
	for _, scope := range []string{
		tokenDomain.ScopeOpenID,
		tokenDomain.ScopeProfile,
		tokenDomain.ScopeEmail,
		tokenDomain.ScopeMetadata,
	} {
		if c.Session.HasScope(scope) {
			return true
		}
	}
	return false
}

// NeedsPermissions reports whether the idp-admin permission lists are requested.
func (c *ClaimsContext) NeedsPermissions() bool {
	return !c.IsClientCredentials() && c.Session.HasScope(tokenDomain.ScopeIDPAdmin)
}

// NeedsURLPermissions reports whether URL permissions apply: confidential
// clients without PKCE that were granted the dedicated scope.
func (c *ClaimsContext) NeedsURLPermissions() bool {
	return !c.IsClientCredentials() &&
		!c.Application.IsPublic() &&
		!c.Application.RequirePKCE &&
		c.URLPermissionsScope != "" &&
		c.Session.HasScope(c.URLPermissionsScope)
}

// BuildClaims assembles the claim map of an active token.
func BuildClaims(c *ClaimsContext) tokenDomain.Claims {
	claims := tokenDomain.Claims{
		tokenDomain.ClaimActive:         true,
		tokenDomain.ClaimIssuedAt:       c.Token.CreatedAt.Unix(),
		tokenDomain.ClaimScope:          strings.Join(c.Session.Scopes, " "),
		tokenDomain.ClaimClientID:       c.Application.ClientID,
		tokenDomain.ClaimMaxTransitTime: int64(maxTransitTime(c).Seconds()),
	}
	if c.Token.ExpiresAt != nil {
		claims[tokenDomain.ClaimExpiresAt] = c.Token.ExpiresAt.Unix()
	}

	if c.IsClientCredentials() {
		if c.Organization != nil {
			claims[tokenDomain.ClaimOrgGUID] = c.Organization.GUID
		}
		return claims
	}

	if c.Session.HasScope(tokenDomain.ScopeOpenID) {
		claims[tokenDomain.ClaimSubject] = c.Token.SubjectID
	}

	if user := c.User; user != nil {
		if c.Session.HasScope(tokenDomain.ScopeOpenID) {
			claims[tokenDomain.ClaimGroupID] = user.GroupID
			claims[tokenDomain.ClaimRowID] = user.RowID
		}
		if c.Session.HasScope(tokenDomain.ScopeProfile) {
			claims[tokenDomain.ClaimName] = user.Name
			claims[tokenDomain.ClaimPhoneNumber] = user.PhoneNumber
		}
		if c.Session.HasScope(tokenDomain.ScopeEmail) {
			claims[tokenDomain.ClaimEmail] = user.Email
		}
		if c.Session.HasScope(tokenDomain.ScopeMetadata) {
			metadata := make(map[string]any, len(user.Metadata)+1)
			for k, v := range user.Metadata {
				metadata[k] = v
			}
			metadata[tokenDomain.ClaimLinkedLoginID] = user.LinkedLoginID
			claims[tokenDomain.ClaimMetadata] = metadata
		}
	}

	if c.NeedsPermissions() {
		claims[tokenDomain.ClaimPermissions] = flattenPermissions(c.Permissions)
	}

	if c.Application.IsPublic() && c.FingerprintEnabled && len(c.Session.Fingerprint) > 0 {
		claims[tokenDomain.ClaimDeviceFingerprint] = base64.RawURLEncoding.EncodeToString(c.Session.Fingerprint)
	}

	if c.NeedsURLPermissions() {
		urls := c.URLPermissions
		if urls == nil {
			urls = []string{}
		}
		claims[tokenDomain.ClaimURLPermissions] = urls
	}
	return claims
}

func maxTransitTime(c *ClaimsContext) time.Duration {
	if c.Application.TokenSettings.MaxTransitTime > 0 {
		return c.Application.TokenSettings.MaxTransitTime
	}
	return c.MaxTransitTime
}

// flattenPermissions groups verbs under their resource name.
func flattenPermissions(permissions []directoryDomain.Permission) map[string][]string {
	flat := make(map[string][]string)
	for _, p := range permissions {
		flat[p.Resource] = append(flat[p.Resource], p.Verb)
	}
	return flat
}
