// Package archive exporta e importa el historial de movimientos como JSON por línea comprimido con zstd (.jsonl.zst).
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// line es la forma de un asiento en el archivo.
type line struct {
	ID                string           `json:"id"`
	VariantID         string           `json:"variant_id"`
	BranchID          string           `json:"branch_id"`
	Motive            entity.Motive    `json:"motive"`
	QuantityDelta     int64            `json:"quantity_delta"`
	PreviousQuantity  int64            `json:"previous_quantity"`
	ResultingQuantity int64            `json:"resulting_quantity"`
	UnitSalePrice     *decimal.Decimal `json:"unit_sale_price,omitempty"`
	UnitCost          decimal.Decimal  `json:"unit_cost"`
	VariantSKU        string           `json:"variant_sku"`
	ProductID         string           `json:"product_id"`
	ProductName       string           `json:"product_name"`
	Model             string           `json:"model"`
	Color             string           `json:"color"`
	UserID            string           `json:"user_id"`
	UserName          string           `json:"user_name,omitempty"`
	Note              string           `json:"note,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// WriteJournal escribe los asientos en w, uno por línea, y devuelve cuántos escribió.
func WriteJournal(w io.Writer, records []*entity.TransactionRecord) (int, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, fmt.Errorf("create zstd encoder: %w", err)
	}
	jw := json.NewEncoder(enc)
	for i, r := range records {
		if err := jw.Encode(line(*r)); err != nil {
			_ = enc.Close()
			return i, fmt.Errorf("encode %s: %w", r.ID, err)
		}
	}
	if err := enc.Close(); err != nil {
		return len(records), fmt.Errorf("close zstd encoder: %w", err)
	}
	return len(records), nil
}

// ReadJournal lee un archivo escrito por WriteJournal en el mismo orden.
func ReadJournal(r io.Reader) ([]*entity.TransactionRecord, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	jr := json.NewDecoder(dec)
	var out []*entity.TransactionRecord
	for {
		var l line
		err := jr.Decode(&l)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", len(out)+1, err)
		}
		rec := entity.TransactionRecord(l)
		out = append(out, &rec)
	}
}
