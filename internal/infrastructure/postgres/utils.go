package postgres

import (
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeLockNotAvailable    = "55P03"
	codeInvalidText         = "22P02"
)

// pgCode devuelve el SQLSTATE del error o "" si no viene de PostgreSQL.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// mapError traduce los códigos de PostgreSQL a errores de dominio y envuelve el resto con op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case codeInvalidText:
		// IDs que no son UUID no pueden existir.
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w: referencia inexistente", op, domain.ErrNotFound)
	case codeLockNotAvailable:
		return fmt.Errorf("%s: %w", op, domain.ErrLockTimeout)
	case codeCheckViolation:
		var pgErr *pgconn.PgError
		errors.As(err, &pgErr)
		if pgErr.ConstraintName == "inventory_quantity_check" {
			return fmt.Errorf("%s: %w", op, domain.ErrInsufficientStock)
		}
		return fmt.Errorf("%s: %w: %s", op, domain.ErrValidation, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// notFoundOr convierte un ErrNotFound genérico (ID mal formado) en uno con tipo e ID.
func notFoundOr(err error, kind, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound(kind, id)
	}
	return err
}

// page aplica LIMIT/OFFSET cuando son positivos.
func page(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}
