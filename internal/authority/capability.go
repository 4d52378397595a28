package authority

// Well-known role names. The vocabulary is open-ended: the auth service
// can introduce new names without a client rebuild, and unknown names are
// simply not granted. These constants only back the capability helpers.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

// IsAdmin reports whether the current identity holds the ADMIN role.
func (a *Authority) IsAdmin() bool { return a.HasRole(RoleAdmin) }

// IsManager reports whether the current identity holds the MANAGER role.
func (a *Authority) IsManager() bool { return a.HasRole(RoleManager) }

// IsEmployee reports whether the current identity holds any role at all
// that grants access to employee screens.
func (a *Authority) IsEmployee() bool {
	return a.HasAnyRole(RoleAdmin, RoleManager, RoleEmployee)
}
