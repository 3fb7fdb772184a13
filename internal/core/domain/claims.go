package domain

import "time"

// Claims is the decoded identity carried by a verified token. It is the only
// shape identity takes once a request has passed authentication.
type Claims struct {
	SubjectID string    `json:"sub"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	// TokenID is empty for principals authenticated with basic auth.
	TokenID string `json:"jti,omitempty"`
}

// IsAdmin reports whether the claims carry the admin role.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanModify implements the owner-or-admin rule.
func (c Claims) CanModify(ownerID string) bool {
	return c.IsAdmin() || (c.SubjectID != "" && c.SubjectID == ownerID)
}
