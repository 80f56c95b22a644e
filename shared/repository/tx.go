package repository

import (
	"context"
	"errors"
	"fmt"

	"elc/infras/postgres"
	"elc/shared/constant"
	"elc/shared/logger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const advisoryXactLockQuery = "SELECT pg_advisory_xact_lock(hashtext($1))"

// WithTx runs fn in a transaction on the write connection. The transaction is
// committed when fn returns nil and rolled back otherwise.
func WithTx(ctx context.Context, db *postgres.Connection, fn func(sqltx *sqlx.Tx) error) (err error) {
	sqltx, err := db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()

			panic(p)
		}
	}()

	if err = fn(sqltx); err != nil {
		if rbErr := sqltx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = sqltx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AdvisoryXactLock blocks until the transaction holds the advisory lock for
// key. The lock is released when the transaction ends.
func AdvisoryXactLock(ctx context.Context, sqltx *sqlx.Tx, key string) error {
	if _, err := sqltx.ExecContext(ctx, advisoryXactLockQuery, key); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to acquire advisory lock: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation
}

// IsForeignKeyViolation reports whether err comes from a missing referenced
// row, typically one deleted concurrently.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeFkViolation
}
