package get_available_slots

import (
	"time"

	"github.com/salonbook/booking-service/internal/domain"
	"github.com/salonbook/booking-service/internal/integrations/salonservice"
	"github.com/salonbook/booking-service/pkg/types"
)

// generateCandidateSlots генерирует сетку кандидатов на день: старты от
// открытия салона с шагом granularity, для которых весь визит умещается
// до закрытия (start + duration <= close).
// Закрытый день или визит длиннее рабочего интервала дают пустой список.
func generateCandidateSlots(
	schedule salonservice.DaySchedule,
	granularityMinutes int,
	durationMinutes int,
) ([]types.TimeString, error) {
	if !schedule.IsOpen || schedule.OpenTime == nil || schedule.CloseTime == nil {
		return []types.TimeString{}, nil
	}

	openTime, err := types.NewTimeStringFromString(*schedule.OpenTime)
	if err != nil {
		return nil, err
	}

	closeTime, err := types.NewTimeStringFromString(*schedule.CloseTime)
	if err != nil {
		return nil, err
	}

	slots := make([]types.TimeString, 0)
	current := openTime

	for current.IsBefore(closeTime) {
		visitEnd, err := current.AddMinutes(durationMinutes)
		if err != nil {
			break
		}
		if visitEnd.IsAfter(closeTime) {
			break
		}

		slots = append(slots, current)

		current, err = current.AddMinutes(granularityMinutes)
		if err != nil {
			break
		}
	}

	return slots, nil
}

// filterByNotice отбрасывает слоты, начинающиеся раньше, чем через
// minNoticeMinutes от текущего момента. Применяется только к запросам
// на сегодняшний день.
func filterByNotice(
	slots []types.TimeString,
	requestDate time.Time,
	now time.Time,
	minNoticeMinutes int,
) ([]types.TimeString, error) {
	if !isSameDay(requestDate, now) {
		return slots, nil
	}

	minAllowed, err := types.NewTimeString(now).AddMinutes(minNoticeMinutes)
	if err != nil {
		return nil, err
	}

	filtered := make([]types.TimeString, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsBefore(minAllowed) {
			filtered = append(filtered, slot)
		}
	}

	return filtered, nil
}

// subtractOccupied оставляет только слоты, не пересекающиеся ни с одним
// активным бронированием.
// Граничные случаи не считаются пересечением: визит, заканчивающийся ровно
// в момент начала слота, слот не занимает.
func subtractOccupied(
	slots []types.TimeString,
	durationMinutes int,
	reservations []*domain.Reservation,
) []types.TimeString {
	available := make([]types.TimeString, 0, len(slots))

	for _, slot := range slots {
		if !isSlotOccupied(slot, durationMinutes, reservations) {
			available = append(available, slot)
		}
	}

	return available
}

// isSlotOccupied проверяет пересечение слота хотя бы с одним активным
// бронированием. Интервалы пересекаются, только если начало бронирования
// строго раньше конца слота и конец бронирования строго позже начала слота.
func isSlotOccupied(slotStart types.TimeString, durationMinutes int, reservations []*domain.Reservation) bool {
	slotEnd, err := slotStart.AddMinutes(durationMinutes)
	if err != nil {
		return false
	}

	for _, r := range reservations {
		if !r.IsActive() {
			continue
		}

		resEnd, err := r.EndTime()
		if err != nil {
			continue
		}

		if r.StartTime.IsBefore(slotEnd) && resEnd.IsAfter(slotStart) {
			return true
		}
	}

	return false
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
