package dbmetrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/salonbook/booking-service/pkg/metrics"
)

// DBExecutor минимальный интерфейс выполнения запросов.
// Ему удовлетворяют *sql.DB, *sql.Tx, *DB и *Tx.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor интерфейс выполнения запросов внутри транзакции
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

// ctxKey ключ для хранения активной транзакции в контексте
type ctxKey struct{}

// WithExecutor кладет транзакционный executor в контекст.
// Репозитории, получившие такой контекст, выполняют запросы внутри транзакции.
func WithExecutor(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(ctx, ctxKey{}, tx)
}

// GetExecutor возвращает executor из контекста, если там есть активная
// транзакция, иначе возвращает fallback
func GetExecutor(ctx context.Context, fallback DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(ctxKey{}).(TxExecutor); ok {
		return tx
	}
	return fallback
}

// IsInTransaction проверяет, есть ли в контексте активная транзакция
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(ctxKey{}).(TxExecutor)
	return ok
}

// DB обёртка над *sql.DB, записывающая длительность запросов в метрики
type DB struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

// Wrap оборачивает *sql.DB сбором метрик запросов
func Wrap(db *sql.DB, m *metrics.Metrics) *DB {
	return &DB{db: db, metrics: m}
}

// WrapWithDefault оборачивает *sql.DB и запускает периодический сбор
// метрик connection pool. Сбор останавливается закрытием stopCh.
func WrapWithDefault(db *sql.DB, m *metrics.Metrics, serviceName string, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, m)

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.SetPoolStats(db.Stats())
			case <-stopCh:
				return
			}
		}
	}()

	return wrapped
}

// ExecContext выполняет запрос с записью метрик
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.metrics.ObserveDBQuery("exec", time.Since(start), err)
	return res, err
}

// QueryContext выполняет запрос с записью метрик
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.metrics.ObserveDBQuery("query", time.Since(start), err)
	return rows, err
}

// QueryRowContext выполняет запрос с записью метрик.
// Ошибка выполнения станет видна только при Scan, поэтому здесь фиксируется
// только длительность.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.metrics.ObserveDBQuery("query_row", time.Since(start), nil)
	return row
}

// BeginTx начинает транзакцию, возвращая обёрнутый метриками executor
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, metrics: d.metrics}, nil
}

// Tx обёртка над *sql.Tx с метриками
type Tx struct {
	tx      *sql.Tx
	metrics *metrics.Metrics
}

// ExecContext выполняет запрос внутри транзакции с записью метрик
func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.metrics.ObserveDBQuery("tx_exec", time.Since(start), err)
	return res, err
}

// QueryContext выполняет запрос внутри транзакции с записью метрик
func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.metrics.ObserveDBQuery("tx_query", time.Since(start), err)
	return rows, err
}

// QueryRowContext выполняет запрос внутри транзакции с записью метрик
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.metrics.ObserveDBQuery("tx_query_row", time.Since(start), nil)
	return row
}

// Commit фиксирует транзакцию
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback откатывает транзакцию
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
