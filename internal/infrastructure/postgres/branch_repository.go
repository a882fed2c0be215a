package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación del puerto BranchRepository sobre PostgreSQL.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de persistencia para sucursales.
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

// Create persiste una nueva sucursal.
func (r *BranchRepo) Create(ctx context.Context, branch *entity.Branch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO branches (id, name, location, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		branch.ID, branch.Name, branch.Location, branch.Active, branch.CreatedAt, branch.UpdatedAt,
	)
	return mapError("insert branch", err)
}

// GetByID obtiene una sucursal por ID, activa o no.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	sql, args, err := psql.Select(branchColumns...).From("branches").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var row branchRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.NotFound("sucursal", id)
		}
		return nil, notFoundOr(mapError("get branch", err), "sucursal", id)
	}
	return row.toEntity(), nil
}

// Update actualiza una sucursal existente.
func (r *BranchRepo) Update(ctx context.Context, branch *entity.Branch) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE branches SET name = $2, location = $3, active = $4, updated_at = $5
		WHERE id = $1`,
		branch.ID, branch.Name, branch.Location, branch.Active, branch.UpdatedAt,
	)
	if err != nil {
		return mapError("update branch", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("sucursal", branch.ID)
	}
	return nil
}

// List lista sucursales por nombre.
func (r *BranchRepo) List(ctx context.Context, includeInactive bool) ([]*entity.Branch, error) {
	q := psql.Select(branchColumns...).From("branches").OrderBy("name", "id")
	if !includeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []branchRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	list := make([]*entity.Branch, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}
