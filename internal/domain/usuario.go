package domain

type Usuario struct {
	ID       string `json:"id"`
	Usuario  string `json:"usuario"`
	Password string `json:"-"`
	Rol      string `json:"rol"`
	Nombre   string `json:"nombre"`
}

// UsuarioCentral es la forma en que el servidor central publica los usuarios.
// El password puede venir en claro o ya hasheado con bcrypt.
type UsuarioCentral struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Usuario  string `json:"usuario"`
	Rol      string `json:"rol"`
	Password string `json:"password"`
}

type LoginDTO struct {
	Usuario  string `json:"usuario" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRespuestaDTO struct {
	ID      string `json:"id"`
	Usuario string `json:"usuario"`
	Rol     string `json:"rol"`
	Nombre  string `json:"nombre"`
	Token   string `json:"token"`
}
