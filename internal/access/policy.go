// AngelaMos | 2026
// policy.go

// Package access decides what a user may see and do in the control panel.
// Every function here is a pure evaluation over a User snapshot; callers
// refresh the snapshot and re-evaluate on each request.
package access

type Preferences struct {
	Notifications *bool `json:"notifications,omitempty"`
}

func (p Preferences) NotificationsDisabled() bool {
	return p.Notifications != nil && !*p.Notifications
}

// User is the authorization view of a user record. A nil *User means no
// authenticated caller.
type User struct {
	ID          string
	Email       string
	Verified    bool
	Role        Role
	Permissions *Permissions
	Suspended   bool
	TokensUsed  int64
	Tier        string
	Subscribed  bool
	Preferences Preferences
}

func HasRole(u *User, roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// HasPermission applies the admin override before consulting the stored
// record, so an admin passes even when a field is explicitly false.
func HasPermission(u *User, key PermissionKey) bool {
	if u == nil || u.Permissions == nil {
		return false
	}
	if u.Role == RoleAdmin {
		return true
	}
	return u.Permissions.Holds(key)
}

type Decision int

const (
	DecisionAllow Decision = iota
	DecisionSignIn
	DecisionSuspended
	DecisionForbidden
)

func (d Decision) Allowed() bool {
	return d == DecisionAllow
}

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionSignIn:
		return "sign_in"
	case DecisionSuspended:
		return "suspended"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Requirement is what a route or tab demands beyond an authenticated,
// unsuspended caller. Zero value demands nothing more.
type Requirement struct {
	Roles      []Role
	Permission PermissionKey
}

var (
	AdminOnly        = Requirement{Permission: PermAccessAdmin}
	DeveloperOrAdmin = Requirement{Roles: []Role{RoleDeveloper, RoleAdmin}}
)

// CanEnter short-circuits on the first failing check. Suspension is checked
// before roles so it overrides admin status.
func CanEnter(u *User, req Requirement) Decision {
	if u == nil {
		return DecisionSignIn
	}
	if u.Suspended {
		return DecisionSuspended
	}
	if len(req.Roles) > 0 && !HasRole(u, req.Roles...) {
		return DecisionForbidden
	}
	if req.Permission != "" && !HasPermission(u, req.Permission) {
		return DecisionForbidden
	}
	return DecisionAllow
}

func AdminGuard(u *User) Decision {
	return CanEnter(u, AdminOnly)
}

func DeveloperGuard(u *User) Decision {
	return CanEnter(u, DeveloperOrAdmin)
}

// TokenQuota is the monthly token allowance for u. Admins are unlimited
// and report -1.
func TokenQuota(u *User) int64 {
	if u == nil {
		return int64(DefaultPermissions(RoleGuest).MaxTokensPerMonth)
	}
	if u.Role == RoleAdmin {
		return -1
	}
	if u.Permissions == nil {
		return 0
	}
	return int64(u.Permissions.MaxTokensPerMonth)
}
