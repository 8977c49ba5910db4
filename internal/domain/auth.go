package domain

// GlobalRole is the account-wide role of a user.
type GlobalRole string

const (
	GlobalRoleUser  GlobalRole = "USER"
	GlobalRoleAdmin GlobalRole = "ADMIN"
)

// Valid reports whether r is one of the known global roles.
func (r GlobalRole) Valid() bool {
	switch r {
	case GlobalRoleUser, GlobalRoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated caller as extracted from the request.
// It is trusted as already verified upstream.
type Identity struct {
	ID    string
	Email string
	Role  GlobalRole
}

// IsAdmin reports whether the identity carries the global admin role.
func (i *Identity) IsAdmin() bool {
	if i == nil {
		return false
	}
	switch i.Role {
	case GlobalRoleAdmin:
		return true
	case GlobalRoleUser:
		return false
	default:
		return false
	}
}
