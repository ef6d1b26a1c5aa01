package entity

type UserRole string

const (
	RoleClient    UserRole = "client"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	Base
	Username string   `db:"username"`
	Email    string   `db:"email"`
	Role     UserRole `db:"role"`
	IsActive bool     `db:"is_active"`
}

// CanReceiveTickets reports whether tickets may be transferred to u.
func (u *User) CanReceiveTickets() bool {
	return u.IsActive && u.Role == RoleClient && u.DeletedAt == nil
}
