package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/pkg/dbmetrics"
	"github.com/salonbook/booking-service/pkg/psqlbuilder"
)

const (
	// queryTimeout ограничивает время выполнения одного запроса к хранилищу
	queryTimeout = 5 * time.Second

	// uniqueViolationCode код ошибки PostgreSQL о нарушении уникальности
	uniqueViolationCode = "23505"

	// activeSlotConstraint имя частичного уникального индекса, запрещающего
	// два неотменённых бронирования на один слот (salon_id, date, start_time)
	activeSlotConstraint = "reservations_active_slot_key"
)

// reservationColumns полный набор колонок таблицы reservations
var reservationColumns = []string{
	"id",
	"salon_id",
	"user_id",
	"reservation_date",
	"start_time",
	"duration_minutes",
	"status",
	"menu_id",
	"menu_name",
	"menu_price",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
//
// Инвариант занятости слота защищён дважды:
//   - usecase создания выполняет проверку пересечений в сериализуемой
//     транзакции с SELECT ... FOR UPDATE;
//   - частичный уникальный индекс reservations_active_slot_key гарантирует
//     инвариант на уровне хранилища даже для конкурентного писателя,
//     пришедшего мимо usecase.
//
// Нарушение индекса возвращается как ErrSlotConflict.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"salon_id",
			"user_id",
			"reservation_date",
			"start_time",
			"duration_minutes",
			"status",
			"menu_id",
			"menu_name",
			"menu_price",
			"notes",
		).
		Values(
			res.SalonID,
			res.UserID,
			res.Date,
			res.StartTime,
			res.DurationMinutes,
			res.Status,
			res.MenuID,
			res.MenuName,
			res.MenuPrice,
			res.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isActiveSlotViolation(err) {
			return nil, ErrSlotConflict
		}
		return nil, classify(err, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err))
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := r.scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, classify(err, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err))
	}

	return res, nil
}

// GetByUserID получает историю бронирований пользователя, новые первыми.
// Опционально фильтрует по статусу.
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("reservation_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, fmt.Errorf("%w: GetByUserID - execute query: %w", ErrExecQuery, err))
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// GetBySalonWithFilter получает бронирования салона с фильтрацией по периоду
// и статусу, упорядоченные по (дата, время начала) по возрастанию.
// Отсутствие бронирований - пустой список, не ошибка.
//
// Внутри транзакции при выборке на конкретную дату добавляется FOR UPDATE:
// этим путём пользуется usecase создания бронирования, блокируя строки дня
// на время проверки занятости слота.
func (r *Repository) GetBySalonWithFilter(ctx context.Context, filter domain.SalonReservationsFilter) ([]*domain.Reservation, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"salon_id": filter.SalonID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"reservation_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"reservation_date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": string(domain.StatusCancelled)})
	}

	selectBuilder = selectBuilder.OrderBy("reservation_date ASC, start_time ASC")

	singleDate := filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate)
	if dbmetrics.IsInTransaction(ctx) && singleDate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, fmt.Errorf("%w: GetBySalonWithFilter - execute query: %w", ErrExecQuery, err))
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// TransitionStatus переводит бронирование из статуса from в статус to.
// Compare-and-swap: строка обновляется только если её текущий статус равен
// from, поэтому конкурентные переходы не затирают друг друга.
// Возвращает ErrTransitionConflict, если строка существует, но уже не в from.
func (r *Repository) TransitionStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: TransitionStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execStatusChange(ctx, executor, id, query, args, "TransitionStatus")
}

// Cancel отменяет бронирование с указанием причины.
// Тот же compare-and-swap по исходному статусу, что и TransitionStatus.
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.ReservationStatus, reason string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execStatusChange(ctx, executor, id, query, args, "Cancel")
}

// Delete физически удаляет бронирование.
// Deprecated: оставлено для старых клиентов, ожидающих физическое удаление
// при отмене. Новым клиентам следует использовать Cancel.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// execStatusChange выполняет UPDATE статуса и различает "не найдено" и
// "найдено, но не в ожидаемом статусе"
func (r *Repository) execStatusChange(ctx context.Context, executor DBExecutor, id int64, query string, args []interface{}, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		// Строка либо не существует, либо статус уже изменился
		existsQuery, existsArgs, err := psqlbuilder.Select("1").
			From("reservations").
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %s - build exists query: %v", ErrBuildQuery, op, err)
		}

		var one int
		err = executor.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrReservationNotFound
		}
		if err != nil {
			return classify(err, fmt.Errorf("%w: %s - check existence: %w", ErrScanRow, op, err))
		}

		return ErrTransitionConflict
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReservation сканирует одну строку в модель бронирования
func (r *Repository) scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.SalonID,
		&res.UserID,
		&res.Date,
		&res.StartTime,
		&res.DurationMinutes,
		&res.Status,
		&res.MenuID,
		&res.MenuName,
		&res.MenuPrice,
		&res.Notes,
		&res.CancellationReason,
		&res.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func (r *Repository) scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := r.scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err))
	}

	return reservations, nil
}

// opCtx ограничивает выполнение операции таймаутом хранилища
func (r *Repository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// classify маппит истечение таймаута в retryable ErrUnavailable,
// остальное возвращает как wrapped
func classify(cause error, wrapped error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, cause)
	}
	return wrapped
}

// isActiveSlotViolation проверяет, что ошибка - нарушение частичного
// уникального индекса активных слотов
func isActiveSlotViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolationCode && pqErr.Constraint == activeSlotConstraint
}
