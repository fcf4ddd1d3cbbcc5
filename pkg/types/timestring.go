package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// timeLayout формат времени HH:MM
const timeLayout = "15:04"

var (
	// ErrInvalidTimeString возвращается при некорректном формате строки времени
	ErrInvalidTimeString = errors.New("types: invalid time string format, expected HH:MM")
)

// TimeString время начала слота в формате "HH:MM" без даты и часового пояса.
// Используется для хранения и сравнения времени слотов внутри одного дня.
// Специальное значение DayEnd ("24:00") обозначает конец дня: оно допустимо
// как время закрытия и как конец визита, но не как начало слота.
type TimeString string

// DayEnd конец дня. Лексикографически больше любого времени HH:MM.
const DayEnd TimeString = "24:00"

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// NewTimeStringFromString создает TimeString из строки с валидацией формата
func NewTimeStringFromString(s string) (TimeString, error) {
	if TimeString(s) == DayEnd {
		return DayEnd, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	return TimeString(t.Format(timeLayout)), nil
}

// String возвращает строковое представление времени
func (ts TimeString) String() string {
	return string(ts)
}

// IsZero проверяет, что время не задано
func (ts TimeString) IsZero() bool {
	return ts == ""
}

// Validate проверяет корректность формата HH:MM (или значение DayEnd)
func (ts TimeString) Validate() error {
	if ts == DayEnd {
		return nil
	}
	if _, err := time.Parse(timeLayout, string(ts)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, ts)
	}
	return nil
}

// Minutes возвращает время как количество минут с начала дня.
// DayEnd дает 1440.
func (ts TimeString) Minutes() (int, error) {
	if ts == DayEnd {
		return 24 * 60, nil
	}
	t, err := time.Parse(timeLayout, string(ts))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, ts)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// AddMinutes возвращает новое время, сдвинутое на minutes минут вперёд.
// Результат не переходит через полночь: 23:50 + 30 вернёт ошибку.
func (ts TimeString) AddMinutes(minutes int) (TimeString, error) {
	total, err := ts.Minutes()
	if err != nil {
		return "", err
	}

	total += minutes
	if total < 0 || total > 24*60 {
		return "", fmt.Errorf("%w: %q + %d minutes is out of day range", ErrInvalidTimeString, ts, minutes)
	}
	if total == 24*60 {
		return DayEnd, nil
	}

	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// IsBefore проверяет, что время строго раньше other.
// Сравнение лексикографическое, формат HH:MM это допускает.
func (ts TimeString) IsBefore(other TimeString) bool {
	return string(ts) < string(other)
}

// IsAfter проверяет, что время строго позже other
func (ts TimeString) IsAfter(other TimeString) bool {
	return string(ts) > string(other)
}

// Value реализует driver.Valuer для записи в БД
func (ts TimeString) Value() (driver.Value, error) {
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	return string(ts), nil
}

// Scan реализует sql.Scanner для чтения из БД.
// Поддерживает строки, байты и time.Time (колонки типа TIME).
func (ts *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*ts = ""
		return nil
	case string:
		parsed, err := parseDBTime(v)
		if err != nil {
			return err
		}
		*ts = parsed
		return nil
	case []byte:
		parsed, err := parseDBTime(string(v))
		if err != nil {
			return err
		}
		*ts = parsed
		return nil
	case time.Time:
		*ts = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported source type %T", ErrInvalidTimeString, src)
	}
}

// parseDBTime парсит время из БД: допускает как HH:MM, так и HH:MM:SS.
// PostgreSQL для типа TIME допускает значение '24:00:00'.
func parseDBTime(s string) (TimeString, error) {
	if s == "24:00:00" || TimeString(s) == DayEnd {
		return DayEnd, nil
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return NewTimeString(t), nil
	}
	return NewTimeStringFromString(s)
}
