package dto

import "time"

// RegisterRequest entrada para registro: username, password y empresa.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyID   string `json:"company_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"omitempty,max=200"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role" validate:"omitempty,oneof=ceo admin seller"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT + usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateUserRequest alta de un usuario dentro de la empresa del token.
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"omitempty,max=200"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role" validate:"omitempty,oneof=ceo admin seller"`
}

// UpdateUserRequest cambios parciales; los campos nil no se tocan.
type UpdateUserRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	Password    *string `json:"password" validate:"omitempty,min=8"`
	Role        *string `json:"role" validate:"omitempty,oneof=ceo admin seller"`
}

// TokenInfo respuesta de validate-token.
type TokenInfo struct {
	Valid     bool   `json:"valid"`
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// UserListResponse página de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
