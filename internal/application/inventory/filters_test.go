package inventory_test

import (
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

func repositoryFilter(branchID string) repository.InventoryFilter {
	return repository.InventoryFilter{BranchID: branchID}
}

func transactionFilter(motives ...entity.Motive) repository.TransactionFilter {
	return repository.TransactionFilter{Motives: motives}
}
