package repository

import (
	"errors"

	repo "posapp/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgresのSQLSTATE
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// DBドライバのエラーをrepositoryの共通エラーに寄せる
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(repo.ErrDuplicate, err)
		case pgSerializationFailure, pgDeadlockDetected:
			return errors.Join(repo.ErrConflict, err)
		}
	}
	return err
}
