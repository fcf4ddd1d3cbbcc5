package simpletxmanager

import (
	"context"
	"database/sql"

	"github.com/salonbook/booking-service/pkg/dbmetrics"
	"github.com/salonbook/booking-service/pkg/txmanager"
)

// beginnerAdapter адаптирует *sql.DB к интерфейсу txmanager.TxBeginner.
// *sql.Tx сам по себе удовлетворяет dbmetrics.TxExecutor.
type beginnerAdapter struct {
	db *sql.DB
}

func (a beginnerAdapter) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return a.db.BeginTx(ctx, opts)
}

// NewTransactionManager создает transaction manager поверх *sql.DB
// без обёртки метрик. Используется, когда метрики выключены.
func NewTransactionManager(db *sql.DB) *txmanager.TransactionManager {
	return txmanager.NewTransactionManager(beginnerAdapter{db: db})
}
