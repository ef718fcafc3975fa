package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ManoGuzman/inventory-system/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeQueryCanceled        = "57014"
)

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

// mapError traduce errores del driver a errores de dominio.
// Los errores del ctx pasan sin envolver; todo lo no clasificado es fallo de almacenamiento.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch pgCode(err) {
	case codeUniqueViolation:
		return errors.Join(domain.ErrDuplicate, err)
	case codeForeignKeyViolation:
		return errors.Join(domain.ErrConflict, err)
	case codeCheckViolation:
		return errors.Join(domain.ErrInvalidInput, err)
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return errors.Join(domain.ErrConflict, err)
	case codeQueryCanceled:
		return errors.Join(context.DeadlineExceeded, err)
	}
	return domain.StorageFailure(op, err)
}
