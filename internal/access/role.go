// AngelaMos | 2026
// role.go

package access

type Role string

const (
	RoleGuest     Role = "guest"
	RoleUser      Role = "user"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

var allRoles = []Role{RoleGuest, RoleUser, RoleDeveloper, RoleAdmin}

// ParseRole maps a stored role name to a Role. Unknown values are reported
// as not ok and resolve to RoleGuest (least privilege).
func ParseRole(s string) (Role, bool) {
	for _, r := range allRoles {
		if string(r) == s {
			return r, true
		}
	}
	return RoleGuest, false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}

func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}
