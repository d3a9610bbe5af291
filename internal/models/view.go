package models

// View names the screens a client can switch between.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewRequest   View = "request"
	ViewMyPasses  View = "my-passes"
	ViewAllPasses View = "all-passes"
	ViewSecurity  View = "security"
	ViewHistory   View = "history"
	ViewVisitors  View = "visitors"
)

var viewRoles = map[View][]Role{
	ViewDashboard: {RoleAdmin, RoleSecurity, RoleVisitor},
	ViewRequest:   {RoleAdmin, RoleSecurity, RoleVisitor},
	ViewMyPasses:  {RoleAdmin, RoleSecurity, RoleVisitor},
	ViewAllPasses: {RoleAdmin, RoleSecurity},
	ViewSecurity:  {RoleAdmin, RoleSecurity},
	ViewHistory:   {RoleAdmin, RoleSecurity},
	ViewVisitors:  {RoleAdmin},
}

func (v View) Valid() bool {
	_, ok := viewRoles[v]
	return ok
}

// CanAccessView reports whether role may open view.
func CanAccessView(role Role, v View) bool {
	for _, r := range viewRoles[v] {
		if r == role {
			return true
		}
	}
	return false
}

// LandingView is where a user lands after login.
func LandingView(role Role) View {
	if role == RoleSecurity {
		return ViewSecurity
	}
	return ViewDashboard
}

// ViewAfterRequest is where a user is sent after submitting a pass request.
func ViewAfterRequest(actor *User) View {
	if actor != nil && actor.Role == RoleVisitor {
		return ViewMyPasses
	}
	return ViewAllPasses
}
