package seed

import (
	"log/slog"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
	"github.com/dormitory-dev/duty-roster/backend/internal/repository"
)

// floorRooms — банк комнат общежития: этаж → [первая комната, последняя комната].
var floorRooms = map[int32][2]int32{
	2: {13, 50},
	3: {51, 88},
	4: {89, 126},
	5: {127, 164},
}

// Rooms возвращает полный банк комнат в порядке возрастания номеров.
func Rooms() []domain.Room {
	rooms := make([]domain.Room, 0, 152)
	for floor := int32(domain.MinFloor); floor <= domain.MaxFloor; floor++ {
		bounds := floorRooms[floor]
		for number := bounds[0]; number <= bounds[1]; number++ {
			rooms = append(rooms, domain.Room{Number: number, Floor: floor})
		}
	}
	return rooms
}

// SeedRooms заполняет таблицу room при первом запуске. Повторный вызов ничего не делает.
func SeedRooms(repo *repository.Repository) error {
	count, err := repo.CountRooms()
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("таблица room уже заполнена", "count", count)
		return nil
	}

	rooms := Rooms()
	if err := repo.InsertRooms(rooms); err != nil {
		return err
	}

	slog.Info("таблица room успешно заполнена", "count", len(rooms))
	return nil
}
