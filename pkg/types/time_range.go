package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Ошибки работы с TimeRange
var (
	ErrInvalidRangeFormat = errors.New("types: invalid time range format")
)

// TimeRange временной интервал в формате "HH:MM-HH:MM"
// Интервал полуоткрытый: [Start, End)
type TimeRange struct {
	Start TimeString
	End   TimeString
}

// NewTimeRangeFromString создает TimeRange из строки "HH:MM-HH:MM" с валидацией
func NewTimeRangeFromString(s string) (TimeRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidRangeFormat, s)
	}

	start, err := NewTimeStringFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q: %v", ErrInvalidRangeFormat, s, err)
	}

	end, err := NewTimeStringFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q: %v", ErrInvalidRangeFormat, s, err)
	}

	if !start.IsBefore(end) {
		return TimeRange{}, fmt.Errorf("%w: start must be before end: %q", ErrInvalidRangeFormat, s)
	}

	return TimeRange{Start: start, End: end}, nil
}

// String возвращает представление "HH:MM-HH:MM"
func (r TimeRange) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// IsZero возвращает true для пустого интервала
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Validate проверяет формат и порядок границ
func (r TimeRange) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return err
	}
	if err := r.End.Validate(); err != nil {
		return err
	}
	if !r.Start.IsBefore(r.End) {
		return fmt.Errorf("%w: start must be before end: %q", ErrInvalidRangeFormat, r.String())
	}
	return nil
}

// DurationMinutes возвращает длительность интервала в минутах
func (r TimeRange) DurationMinutes() (int, error) {
	start, err := r.Start.Minutes()
	if err != nil {
		return 0, err
	}
	end, err := r.End.Minutes()
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// Overlaps проверяет реальное пересечение двух полуоткрытых интервалов
// Граничащие интервалы (конец одного == начало другого) НЕ пересекаются
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.IsBefore(other.End) && other.Start.IsBefore(r.End)
}

// Contains проверяет, что other целиком лежит внутри r
func (r TimeRange) Contains(other TimeRange) bool {
	return !other.Start.IsBefore(r.Start) && !r.End.IsBefore(other.End)
}

// MarshalJSON сериализует интервал как строку "HH:MM-HH:MM"
func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON разбирает интервал из строки "HH:MM-HH:MM"
func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRangeFormat, err)
	}
	parsed, err := NewTimeRangeFromString(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value реализует driver.Valuer для сохранения в БД
func (r TimeRange) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r.String(), nil
}

// Scan реализует sql.Scanner для чтения из БД
func (r *TimeRange) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = TimeRange{}
		return nil
	case string:
		parsed, err := NewTimeRangeFromString(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		parsed, err := NewTimeRangeFromString(string(v))
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidRangeFormat, src)
	}
}
