package types

import "fmt"

// Role is a member's rank inside an organization. Higher roles include every
// permission of the lower ones.
type Role int

const (
	RoleNone Role = iota
	RoleViewer
	RoleMember
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleNone:   "none",
	RoleViewer: "viewer",
	RoleMember: "member",
	RoleAdmin:  "admin",
	RoleOwner:  "owner",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// AtLeast reports whether r ranks at or above min
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole converts a role name back into a Role
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s && role != RoleNone {
			return role, nil
		}
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// Resource names a quota-bounded item type
type Resource string

const (
	ResourceBoards  Resource = "boards"
	ResourceColumns Resource = "columns"
	ResourceCards   Resource = "cards"
)

// Valid reports whether r is one of the known resource types
func (r Resource) Valid() bool {
	switch r {
	case ResourceBoards, ResourceColumns, ResourceCards:
		return true
	}
	return false
}
