package auth

// Role is the closed set of account roles the backend issues.
type Role int

const (
	RoleUser Role = iota
	RoleAuthor
	RoleModerator
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAuthor:
		return "author"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "user"
	}
}

// ParseRole maps a role string from the backend to a Role. Unknown
// strings get the least privilege.
func ParseRole(s string) Role {
	switch s {
	case "author":
		return RoleAuthor
	case "moderator":
		return RoleModerator
	case "admin":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Capability is one privileged client action.
type Capability int

const (
	// CapEditContent covers creating and editing categories and quizzes.
	CapEditContent Capability = iota
	// CapManageTags covers tag CRUD.
	CapManageTags
	// CapManageUsers covers the user administration surface.
	CapManageUsers
)

// roleCapabilities is the single place role privileges are defined,
// replacing per-call-site role string checks.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleUser: {},
	RoleAuthor: {
		CapEditContent: true,
	},
	RoleModerator: {
		CapEditContent: true,
		CapManageTags:  true,
	},
	RoleAdmin: {
		CapEditContent: true,
		CapManageTags:  true,
		CapManageUsers: true,
	},
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}
