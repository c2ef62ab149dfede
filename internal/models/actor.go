package models

// Actor is the authenticated identity for the current request. Handlers
// build it from the session and pass it into every service call; services
// never read identity from ambient state.
type Actor struct {
	StaffID  uint
	Name     string
	Role     StaffRole
	BranchID *uint
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
