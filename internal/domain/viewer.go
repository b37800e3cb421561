package domain

// Viewer is the caller of an operation as identified by its access token.
// The zero Viewer is anonymous.
type Viewer struct {
	UserID string
	Email  string
	Role   Role
}

func (v Viewer) IsAuthenticated() bool {
	return v.UserID != ""
}

func (v Viewer) IsAdmin() bool {
	return v.IsAuthenticated() && v.Role == RoleAdmin
}

func (v Viewer) Is(userID string) bool {
	return v.IsAuthenticated() && SameID(v.UserID, userID)
}
