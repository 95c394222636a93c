package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleOperator = "operator"
)

// User representa un usuario de planta. Ingresa con usuario + PIN.
type User struct {
	ID        string
	Username  string
	Name      string
	PINHash   string // bcrypt, nunca el PIN plano
	Role      string // admin, manager, operator
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidRole indica si el rol es uno de los conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleOperator:
		return true
	}
	return false
}
