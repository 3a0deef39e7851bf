package seed

import (
	"errors"
	"log/slog"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
	"github.com/dormitory-dev/duty-roster/backend/internal/repository"
)

// SeedDutyDays создаёт тестовое расписание на неделю вперёд: этажи по кругу,
// по две соседние комнаты на дежурство. Только для development-окружения.
func SeedDutyDays(repo *repository.Repository) error {
	today := domain.Today()

	for i := 0; i < 7; i++ {
		floor := int32(domain.MinFloor + i%(domain.MaxFloor-domain.MinFloor+1))
		first := floorRooms[floor][0] + int32(2*i)

		dd := &domain.DutyDay{
			DutyDate: today.AddDays(i),
			Floor:    floor,
			Rooms:    []int32{first, first + 1},
		}

		if err := repo.CreateDutyDay(dd); err != nil {
			if errors.Is(err, repository.ErrDuplicateDutyDate) {
				slog.Info("дежурство уже существует, пропускаем", "dutyDate", dd.DutyDate.String())
				continue
			}
			return err
		}

		slog.Info("создано тестовое дежурство", "dutyDate", dd.DutyDate.String(), "floor", floor, "rooms", dd.Rooms)
	}

	return nil
}
