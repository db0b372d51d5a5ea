package entity

// Actor is the authenticated user performing a request.
type Actor struct {
	UserID         string
	OrganizationID string
	Role           string
}

func (a Actor) IsAdmin() bool {
	return a.Role == "admin" || a.Role == "owner"
}
