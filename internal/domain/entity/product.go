package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
)

// Product representa el producto maestro; el stock se lleva por Variant y sucursal.
type Product struct {
	ID        string
	SKU       string // opcional; único si existe
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Variant es la unidad de inventario (SKU) de un producto: modelo, color y precios propios.
type Variant struct {
	ID              string
	ProductID       string
	SKU             string // único
	Barcode         string // opcional; único si existe
	Model           string
	Color           string
	AcquisitionCost decimal.Decimal
	LabelPrice      decimal.Decimal
	LabelPrinted    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Normalize recorta espacios y pasa los códigos a mayúsculas.
func (v *Variant) Normalize() {
	v.SKU = strings.ToUpper(strings.TrimSpace(v.SKU))
	v.Barcode = strings.TrimSpace(v.Barcode)
	v.Model = strings.TrimSpace(v.Model)
	v.Color = strings.TrimSpace(v.Color)
}

// Validate aplica las reglas de precio: costo ≥ 0 y precio de etiqueta ≥ costo. Nunca ajusta valores.
func (v *Variant) Validate() error {
	verr := &domain.ValidationError{}
	if v.ProductID == "" {
		verr.Add("product_id", "requerido")
	}
	if v.SKU == "" {
		verr.Add("sku", "requerido")
	}
	if v.AcquisitionCost.IsNegative() {
		verr.Add("acquisition_cost", "no puede ser negativo")
	}
	if v.LabelPrice.LessThan(v.AcquisitionCost) {
		verr.Add("label_price", "debe ser mayor o igual al costo de adquisición")
	}
	return verr.OrNil()
}

// Normalize recorta el nombre y el SKU del producto.
func (p *Product) Normalize() {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	p.Name = strings.TrimSpace(p.Name)
}

// Validate exige nombre.
func (p *Product) Validate() error {
	if p.Name == "" {
		return domain.NewValidationError("name", "requerido")
	}
	return nil
}
