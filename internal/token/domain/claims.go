package domain

// Scopes that select optional claim groups.
const (
	ScopeOpenID   = "openid"
	ScopeProfile  = "profile"
	ScopeEmail    = "email"
	ScopeMetadata = "metadata"
	ScopeIDPAdmin = "idp-admin"
)

// Claim names written to introspection and userinfo responses.
const (
	ClaimActive            = "active"
	ClaimExpiresAt         = "exp"
	ClaimIssuedAt          = "iat"
	ClaimScope             = "scope"
	ClaimClientID          = "client_id"
	ClaimMaxTransitTime    = "max_transit_time"
	ClaimOrgGUID           = "org_guid"
	ClaimSubject           = "sub"
	ClaimGroupID           = "group_id"
	ClaimRowID             = "row_id"
	ClaimName              = "name"
	ClaimPhoneNumber       = "phone_number"
	ClaimEmail             = "email"
	ClaimMetadata          = "metadata"
	ClaimLinkedLoginID     = "linked_login_id"
	ClaimPermissions       = "permissions"
	ClaimDeviceFingerprint = "device_fingerprint"
	ClaimURLPermissions    = "url-permissions"
)

// Claims is a flat claim map ready for JSON serialization.
type Claims map[string]any

// InactiveClaims is the only answer given for a token that is not active.
func InactiveClaims() Claims {
	return Claims{ClaimActive: false}
}

// Active reports the value of the active claim.
func (c Claims) Active() bool {
	active, _ := c[ClaimActive].(bool)
	return active
}
