package entity

// Motive es la causa de un movimiento de stock.
type Motive string

// Motivos de movimiento.
const (
	MotiveSale               Motive = "SALE"                // venta registrada en caja
	MotiveDirectSale         Motive = "DIRECT_SALE"         // venta directa al cliente
	MotiveAdjustmentSurplus  Motive = "ADJUSTMENT_SURPLUS"  // sobrante de inventario
	MotiveAdjustmentShortage Motive = "ADJUSTMENT_SHORTAGE" // faltante de inventario
	MotiveDamageLoss         Motive = "DAMAGE_LOSS"         // baja por merma o daño
	MotivePurchaseIntake     Motive = "PURCHASE_INTAKE"     // ingreso por adquisición o compra
)

// Motives lista los motivos en orden de catálogo.
var Motives = []Motive{
	MotiveSale,
	MotiveDirectSale,
	MotiveAdjustmentSurplus,
	MotiveAdjustmentShortage,
	MotiveDamageLoss,
	MotivePurchaseIntake,
}

var motiveLabels = map[Motive]string{
	MotiveSale:               "Venta",
	MotiveDirectSale:         "Venta directa al cliente",
	MotiveAdjustmentSurplus:  "Ajuste de inventario (Sobrante)",
	MotiveAdjustmentShortage: "Ajuste de inventario (Faltante)",
	MotiveDamageLoss:         "Baja por merma / daño",
	MotivePurchaseIntake:     "Ingreso por adquisición / compra",
}

// IsValid indica si el motivo pertenece al catálogo.
func (m Motive) IsValid() bool {
	_, ok := motiveLabels[m]
	return ok
}

// IsSale indica si el motivo genera ingresos.
func (m Motive) IsSale() bool {
	return m == MotiveSale || m == MotiveDirectSale
}

// IsIncrease indica si el motivo solo admite deltas positivos.
func (m Motive) IsIncrease() bool {
	return m == MotiveAdjustmentSurplus || m == MotivePurchaseIntake
}

// IsDecrease indica si el motivo solo admite deltas negativos.
func (m Motive) IsDecrease() bool {
	return m.IsSale() || m == MotiveAdjustmentShortage || m == MotiveDamageLoss
}

// Allows indica si el signo de delta es coherente con el motivo.
func (m Motive) Allows(delta int64) bool {
	switch {
	case delta > 0:
		return m.IsIncrease()
	case delta < 0:
		return m.IsDecrease()
	default:
		return false
	}
}

// Label devuelve la descripción legible del motivo.
func (m Motive) Label() string {
	return motiveLabels[m]
}

// Direction devuelve "in" o "out".
func (m Motive) Direction() string {
	if m.IsIncrease() {
		return "in"
	}
	return "out"
}
