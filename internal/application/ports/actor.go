package ports

// Actor identidad del usuario autenticado que ejecuta una operación.
type Actor struct {
	UserID string
	Name   string
	Role   string
}

// Performer identidad a registrar en marcas de etapa y movimientos.
func (a Actor) Performer() string {
	if a.Name != "" {
		return a.Name
	}
	return a.UserID
}
