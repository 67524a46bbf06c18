package dto

// MaxPageLimit tope de limit cuando el cliente pide una página.
const MaxPageLimit = 1000

// PageQuery limit/offset opcionales. Sin limit (0) los listados devuelven todas las filas:
// el dashboard filtra y pagina del lado del cliente.
type PageQuery struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize deja limit en 0 (sin límite) si no es positivo, lo recorta a MaxPageLimit
// y lleva offsets negativos a 0.
func (p PageQuery) Normalize() PageQuery {
	switch {
	case p.Limit < 0:
		p.Limit = 0
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ErrorResponse cuerpo de todas las respuestas de error: {"code": "...", "message": "..."}.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
