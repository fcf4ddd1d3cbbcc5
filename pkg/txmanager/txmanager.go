package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/salonbook/booking-service/pkg/dbmetrics"
)

const (
	// serializationFailureCode код ошибки PostgreSQL при конфликте
	// сериализуемых транзакций
	serializationFailureCode = "40001"

	maxRetries   = 3
	retryBackoff = 50 * time.Millisecond
)

// ErrTxFailed возвращается, когда транзакция не удалась после всех попыток
var ErrTxFailed = errors.New("txmanager: transaction failed")

// TxBeginner интерфейс для начала транзакций
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции внутри транзакции БД.
// Активная транзакция передается репозиториям через контекст.
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый transaction manager
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn внутри транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoReadOnly выполняет fn внутри read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// DoSerializable выполняет fn внутри SERIALIZABLE транзакции.
// При serialization_failure (40001) транзакция повторяется до maxRetries раз.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = m.run(ctx, opts, fn)
		if lastErr == nil {
			return nil
		}
		if !isSerializationFailure(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: serialization failure after %d attempts: %w", ErrTxFailed, maxRetries, lastErr)
}

// run выполняет fn в новой транзакции, прокидывая её через контекст.
// Причины ошибок заворачиваются через %w: isSerializationFailure должен
// видеть *pq.Error сквозь всю цепочку.
func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrTxFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txCtx := dbmetrics.WithExecutor(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTxFailed, err)
	}

	return nil
}

// isSerializationFailure проверяет, является ли ошибка конфликтом
// сериализуемых транзакций PostgreSQL
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == serializationFailureCode
	}
	return false
}
