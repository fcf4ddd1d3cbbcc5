package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/pkg/dbmetrics"
	"github.com/salonbook/booking-service/pkg/psqlbuilder"
)

// DBExecutor интерфейс выполнения запросов, переиспользуем из dbmetrics
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий для работы с политиками бронирования салонов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBySalonID получает политику бронирования салона.
// Отсутствие строки - ErrPolicyNotFound; вызывающий подставляет дефолты.
func (r *Repository) GetBySalonID(ctx context.Context, salonID int64) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"salon_id",
		"slot_granularity_minutes",
		"advance_booking_days",
		"min_notice_minutes",
		"created_at",
		"updated_at",
	).
		From("booking_policies").
		Where(squirrel.Eq{"salon_id": salonID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonID - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.BookingPolicy
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.SalonID,
		&p.SlotGranularityMinutes,
		&p.AdvanceBookingDays,
		&p.MinNoticeMinutes,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonID - scan policy: %w", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// Upsert создает или обновляет политику бронирования салона.
// Один салон - одна строка (уникальность по salon_id).
func (r *Repository) Upsert(ctx context.Context, p *domain.BookingPolicy) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_policies").
		Columns(
			"salon_id",
			"slot_granularity_minutes",
			"advance_booking_days",
			"min_notice_minutes",
		).
		Values(
			p.SalonID,
			p.SlotGranularityMinutes,
			p.AdvanceBookingDays,
			p.MinNoticeMinutes,
		).
		Suffix(`ON CONFLICT (salon_id) DO UPDATE SET
			slot_granularity_minutes = EXCLUDED.slot_granularity_minutes,
			advance_booking_days = EXCLUDED.advance_booking_days,
			min_notice_minutes = EXCLUDED.min_notice_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}
