package inventory

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Los pares leídos con StockRepository.GetForUpdate quedan bloqueados hasta Commit o Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.LedgerTx) error) error
}
