package get_available_slots

import (
	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/pkg/types"
)

// generateGrid строит сетку слотов дня по рабочим часам зоны
// Слоты идут с шагом granularity и длительностью duration; последний слот
// заканчивается не позже закрытия
func generateGrid(schedule domain.DaySchedule, granularity, duration int) ([]types.TimeRange, error) {
	if !schedule.IsOpen || schedule.OpenTime == nil || schedule.CloseTime == nil {
		return []types.TimeRange{}, nil
	}

	grid := make([]types.TimeRange, 0)
	start := *schedule.OpenTime

	for start.IsBefore(*schedule.CloseTime) {
		end, err := start.AddMinutes(duration)
		if err != nil {
			return nil, err
		}
		if schedule.CloseTime.IsBefore(end) {
			break
		}

		grid = append(grid, types.TimeRange{Start: start, End: end})

		start, err = start.AddMinutes(granularity)
		if err != nil {
			return nil, err
		}
	}

	return grid, nil
}
