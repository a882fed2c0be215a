// Package memory implementa los puertos de persistencia en memoria del proceso.
// Sirve para desarrollo y pruebas; comparte las reglas de bloqueo por par del adaptador PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// DefaultLockTimeout espera máxima por el bloqueo de un par.
const DefaultLockTimeout = 5 * time.Second

// Store guarda catálogo, sucursales, existencias e historial.
// mu protege los mapas; los bloqueos por par serializan las transacciones de un mismo par.
type Store struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
	variants map[string]*entity.Variant
	branches map[string]*entity.Branch
	stock    map[entity.StockKey]*entity.InventoryRecord
	journal  []*entity.TransactionRecord

	locks       *keyLocks
	lockTimeout time.Duration
}

// NewStore crea un store vacío. lockTimeout <= 0 usa DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		products:    make(map[string]*entity.Product),
		variants:    make(map[string]*entity.Variant),
		branches:    make(map[string]*entity.Branch),
		stock:       make(map[entity.StockKey]*entity.InventoryRecord),
		locks:       newKeyLocks(),
		lockTimeout: lockTimeout,
	}
}

// keyLocks entrega un candado por par, creado bajo demanda y liberado cuando nadie lo usa.
type keyLocks struct {
	mu sync.Mutex
	m  map[entity.StockKey]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[entity.StockKey]*keyLock)}
}

// acquire espera el candado del par como máximo timeout.
func (l *keyLocks) acquire(ctx context.Context, key entity.StockKey, timeout time.Duration) (func(), error) {
	l.mu.Lock()
	kl, ok := l.m[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.m[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.unref(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key, kl)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(key, kl)
		return nil, domain.ErrLockTimeout
	}
}

func (l *keyLocks) unref(key entity.StockKey, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.m, key)
	}
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func copyVariant(v *entity.Variant) *entity.Variant {
	cp := *v
	return &cp
}

func copyBranch(b *entity.Branch) *entity.Branch {
	cp := *b
	return &cp
}

func copyRecord(r *entity.TransactionRecord) *entity.TransactionRecord {
	cp := *r
	if r.UnitSalePrice != nil {
		price := *r.UnitSalePrice
		cp.UnitSalePrice = &price
	}
	return &cp
}
