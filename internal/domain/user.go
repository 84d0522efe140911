package domain

// User is an account that owns binders. Authentication is deliberately
// thin: a password hash and a display name. Registration flows, roles and
// invites are out of scope for this server.
type User struct {
	Syncable
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-"`
	Suspended    bool   `json:"suspended,omitempty"`
}

// CanInteract reports whether the user may like, favorite or comment.
func (u *User) CanInteract() bool {
	return !u.Suspended && !u.IsDeleted()
}
