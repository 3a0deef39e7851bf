package seed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
)

func TestRoomsBank(t *testing.T) {
	rooms := Rooms()

	// 4 этажа по 38 комнат
	require.Len(t, rooms, 152)

	perFloor := make(map[int32][]int32)
	for _, room := range rooms {
		require.GreaterOrEqual(t, room.Floor, int32(domain.MinFloor))
		require.LessOrEqual(t, room.Floor, int32(domain.MaxFloor))
		perFloor[room.Floor] = append(perFloor[room.Floor], room.Number)
	}

	bounds := map[int32][2]int32{
		2: {13, 50},
		3: {51, 88},
		4: {89, 126},
		5: {127, 164},
	}
	for floor, want := range bounds {
		numbers := perFloor[floor]
		require.Len(t, numbers, 38, "этаж %d", floor)
		require.Equal(t, want[0], numbers[0], "этаж %d", floor)
		require.Equal(t, want[1], numbers[len(numbers)-1], "этаж %d", floor)
	}
}

func TestRoomsAscendingAndUnique(t *testing.T) {
	rooms := Rooms()

	for i := 1; i < len(rooms); i++ {
		require.Greater(t, rooms[i].Number, rooms[i-1].Number)
	}
}
