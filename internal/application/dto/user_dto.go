package dto

import "time"

// RegisterUserRequest alta de usuario (solo admin). El PIN se hashea en el caso de uso.
type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Name     string `json:"name" validate:"required,max=200"`
	PIN      string `json:"pin" validate:"required,numeric,min=4,max=12"`
	Role     string `json:"role" validate:"required,oneof=admin manager operator"`
}

// UserResponse salida de un usuario (sin PIN).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login con usuario + PIN.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	PIN      string `json:"pin" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
