// Package csvimport lee catálogos de productos desde CSV exportados por hojas de cálculo (UTF-8, Latin-1 o Windows-1252).
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
)

// Columnas reconocidas en la cabecera (sin importar mayúsculas ni orden).
const (
	colProductSKU   = "product_sku"
	colProductName  = "product_name"
	colVariantSKU   = "variant_sku"
	colBarcode      = "barcode"
	colModel        = "model"
	colColor        = "color"
	colCost         = "acquisition_cost"
	colLabelPrice   = "label_price"
	colBranchID     = "branch_id"
	colInitialStock = "initial_stock"
)

var required = []string{colProductName, colVariantSKU, colCost, colLabelPrice}

// decoder devuelve un lector en UTF-8 para el charset indicado.
func decoder(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "-", "")) {
	case "", "utf8":
		return r, nil
	case "latin1", "iso88591":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, domain.NewValidationError("charset", fmt.Sprintf("%q no soportado (utf8|latin1|windows1252)", charset))
	}
}

// ReadCatalog agrupa las filas por producto (product_sku, o product_name si no hay SKU)
// conservando el orden de aparición. Cada fila es una variante.
func ReadCatalog(r io.Reader, charset string) ([]dto.CreateProductRequest, error) {
	in, err := decoder(r, charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewValidationError("file", "archivo vacío")
	}
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	verr := &domain.ValidationError{}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			verr.Add(c, "columna requerida")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var out []dto.CreateProductRequest
	index := make(map[string]int)
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fila %d: %w", row, err)
		}
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if strings.Join(rec, "") == "" {
			continue
		}

		prefix := fmt.Sprintf("fila %d: ", row)
		v := dto.CreateVariantRequest{
			SKU:      get(colVariantSKU),
			Barcode:  get(colBarcode),
			Model:    get(colModel),
			Color:    get(colColor),
			BranchID: get(colBranchID),
		}
		v.AcquisitionCost = amount(verr, prefix+colCost, get(colCost))
		v.LabelPrice = amount(verr, prefix+colLabelPrice, get(colLabelPrice))
		v.InitialStock = amount(verr, prefix+colInitialStock, get(colInitialStock))

		name, sku := get(colProductName), get(colProductSKU)
		if name == "" {
			verr.Add(prefix+colProductName, "requerido")
			continue
		}
		key := strings.ToUpper(sku)
		if key == "" {
			key = "name:" + strings.ToLower(name)
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, dto.CreateProductRequest{SKU: sku, Name: name})
		}
		out[i].Variants = append(out[i].Variants, v)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// amount interpreta un número con punto o coma decimal; vacío = 0.
func amount(verr *domain.ValidationError, field, raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		verr.Add(field, "número inválido")
		return decimal.Zero
	}
	return d
}
