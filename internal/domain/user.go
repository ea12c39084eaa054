package domain

type User struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"nombre"`
	Email    string `json:"correo"`
	Password string `json:"password,omitempty"`
	Role     string `json:"rol"` // ADMIN | EMPLEADO
}
