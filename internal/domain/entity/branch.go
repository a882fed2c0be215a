package entity

import "time"

// Branch representa una sucursal donde se almacena y vende inventario.
// Las sucursales no se borran: el historial de movimientos las referencia.
type Branch struct {
	ID        string
	Name      string
	Location  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
