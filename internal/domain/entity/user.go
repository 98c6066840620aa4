package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleVentas   = "ventas"
	RoleFinanzas = "finanzas"
)

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // admin, ventas, finanzas
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
