// Package bootstrap arma los repositorios y casos de uso según STORAGE_DRIVER. Lo comparten la API y ledgerctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/application/usecase"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-sucursales/pkg/config"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// Backend repositorios de un motor de almacenamiento.
type Backend struct {
	Driver          string
	TxRunner        inventory.TxRunner
	ProductRepo     repository.ProductRepository
	VariantRepo     repository.VariantRepository
	BranchRepo      repository.BranchRepository
	InventoryRepo   repository.InventoryRepository
	TransactionRepo repository.TransactionRepository
	SnapshotRepo    repository.SnapshotRepository

	close func()
}

// Close libera el pool de conexiones si lo hay.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open conecta el backend configurado. Con postgres y DB.AutoMigrate aplica las migraciones embebidas antes de abrir el pool.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore(cfg.Ledger.LockTimeout)
		return &Backend{
			Driver:          "memory",
			TxRunner:        memory.NewTxRunner(store),
			ProductRepo:     memory.NewProductRepository(store),
			VariantRepo:     memory.NewVariantRepository(store),
			BranchRepo:      memory.NewBranchRepository(store),
			InventoryRepo:   memory.NewInventoryRepository(store),
			TransactionRepo: memory.NewTransactionRepository(store),
			SnapshotRepo:    memory.NewSnapshotRepository(store),
		}, nil

	case "postgres":
		if cfg.DB.AutoMigrate {
			if err := Migrate(cfg.DB.ConnectionString(), log); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		runner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
		return &Backend{
			Driver:          "postgres",
			TxRunner:        runner,
			ProductRepo:     postgres.NewProductRepository(pool),
			VariantRepo:     postgres.NewVariantRepository(pool),
			BranchRepo:      postgres.NewBranchRepository(pool),
			InventoryRepo:   postgres.NewInventoryRepository(pool),
			TransactionRepo: postgres.NewTransactionRepository(pool),
			SnapshotRepo:    postgres.NewSnapshotRepository(runner),
			close:           pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("STORAGE_DRIVER %q no soportado", cfg.Storage.Driver)
	}
}

// Migrate aplica las migraciones pendientes.
func Migrate(databaseURL string, log *logger.Logger) error {
	m, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("esquema actualizado")
	return nil
}

// Services casos de uso listos para los handlers.
type Services struct {
	Recorder  *inventory.Recorder
	Ledger    *inventory.Ledger
	Engine    *analytics.Engine
	ProductUC *usecase.ProductUseCase
	BranchUC  *usecase.BranchUseCase
}

// NewServices construye los casos de uso sobre el backend.
func NewServices(b *Backend, cfg *config.Config, log *logger.Logger) (*Services, error) {
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, err
	}
	recorder := inventory.NewRecorder(b.TxRunner, b.VariantRepo, b.ProductRepo, b.BranchRepo, log,
		inventory.RecorderConfig{SaleMotive: entity.Motive(cfg.Ledger.SaleMotive)})
	return &Services{
		Recorder:  recorder,
		Ledger:    inventory.NewLedger(b.InventoryRepo, b.TransactionRepo, b.SnapshotRepo, b.VariantRepo, b.BranchRepo),
		Engine:    analytics.NewEngine(b.SnapshotRepo, b.InventoryRepo, loc, cfg.Ledger.TopN),
		ProductUC: usecase.NewProductUseCase(b.ProductRepo, b.VariantRepo, b.BranchRepo, recorder),
		BranchUC:  usecase.NewBranchUseCase(b.BranchRepo),
	}, nil
}
