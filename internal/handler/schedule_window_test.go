package handler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
)

func TestScheduleWindow(t *testing.T) {
	today, err := domain.ParseDate("2025-03-01")
	require.NoError(t, err)

	start, end := scheduleWindow(today, 0)
	require.Equal(t, "2025-03-01", start.String())
	require.Equal(t, "2025-03-01", end.String())

	start, end = scheduleWindow(today, 7)
	require.Equal(t, "2025-03-01", start.String())
	require.Equal(t, "2025-03-08", end.String())

	start, end = scheduleWindow(today, 30)
	require.Equal(t, "2025-03-01", start.String())
	require.Equal(t, "2025-03-31", end.String())
}

func TestDecodeScheduleEntries(t *testing.T) {
	entries, err := decodeScheduleEntries([]byte(`[{"dutyDate":"2025-03-01","floor":2,"rooms":[13,14]}]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "2025-03-01", entries[0].DutyDate.String())
	require.Equal(t, []int32{13, 14}, entries[0].Rooms)

	// Повреждённая запись в кэше должна вернуть ошибку, а не пустой список
	_, err = decodeScheduleEntries([]byte(`{"не":"массив"`))
	require.Error(t, err)
}
