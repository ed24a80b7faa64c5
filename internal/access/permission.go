// AngelaMos | 2026
// permission.go

package access

type PermissionKey string

const (
	PermAccessAdmin     PermissionKey = "canAccessAdmin"
	PermManageUsers     PermissionKey = "canManageUsers"
	PermViewAnalytics   PermissionKey = "canViewAnalytics"
	PermTokensPerMonth  PermissionKey = "maxTokensPerMonth"
	PermProjectsAllowed PermissionKey = "maxProjectsAllowed"
)

type Permissions struct {
	CanAccessAdmin     bool `json:"canAccessAdmin"`
	CanManageUsers     bool `json:"canManageUsers"`
	CanViewAnalytics   bool `json:"canViewAnalytics"`
	MaxTokensPerMonth  int  `json:"maxTokensPerMonth"`
	MaxProjectsAllowed int  `json:"maxProjectsAllowed"`
}

var defaultPermissions = map[Role]Permissions{
	RoleGuest: {
		MaxTokensPerMonth:  1000,
		MaxProjectsAllowed: 1,
	},
	RoleUser: {
		MaxTokensPerMonth:  10000,
		MaxProjectsAllowed: 5,
	},
	RoleDeveloper: {
		CanAccessAdmin:     true,
		CanViewAnalytics:   true,
		MaxTokensPerMonth:  50000,
		MaxProjectsAllowed: 20,
	},
	RoleAdmin: {
		CanAccessAdmin:     true,
		CanManageUsers:     true,
		CanViewAnalytics:   true,
		MaxTokensPerMonth:  100000,
		MaxProjectsAllowed: 100,
	},
}

// DefaultPermissions returns a fresh copy of the role's default record.
// Unknown roles get the guest record.
func DefaultPermissions(role Role) Permissions {
	if p, ok := defaultPermissions[role]; ok {
		return p
	}
	return defaultPermissions[RoleGuest]
}

// Holds reports whether the record grants key. Quota keys are held when
// strictly positive.
func (p Permissions) Holds(key PermissionKey) bool {
	switch key {
	case PermAccessAdmin:
		return p.CanAccessAdmin
	case PermManageUsers:
		return p.CanManageUsers
	case PermViewAnalytics:
		return p.CanViewAnalytics
	case PermTokensPerMonth:
		return p.MaxTokensPerMonth > 0
	case PermProjectsAllowed:
		return p.MaxProjectsAllowed > 0
	default:
		return false
	}
}

func (k PermissionKey) Valid() bool {
	switch k {
	case PermAccessAdmin, PermManageUsers, PermViewAnalytics,
		PermTokensPerMonth, PermProjectsAllowed:
		return true
	}
	return false
}
