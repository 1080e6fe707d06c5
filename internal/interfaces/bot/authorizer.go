package bot

// Authorizer decides whether an acting identity may use the
// administrative surface. Handlers re-check it on every entry point and
// every wizard step, so widening the rule later needs no handler changes.
type Authorizer interface {
	IsAdmin(userID int64) bool
}

// SingleAdminAuthorizer authorizes exactly one configured account
type SingleAdminAuthorizer struct {
	adminID int64
}

// NewSingleAdminAuthorizer creates an authorizer for one admin identity
func NewSingleAdminAuthorizer(adminID int64) *SingleAdminAuthorizer {
	return &SingleAdminAuthorizer{adminID: adminID}
}

// IsAdmin reports whether the user is the configured administrator
func (a *SingleAdminAuthorizer) IsAdmin(userID int64) bool {
	return a.adminID != 0 && userID == a.adminID
}

var _ Authorizer = (*SingleAdminAuthorizer)(nil)
