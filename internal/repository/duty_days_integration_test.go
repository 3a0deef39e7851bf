//go:build integration

package repository_test

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"github.com/dormitory-dev/duty-roster/backend/internal/config"
	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
	"github.com/dormitory-dev/duty-roster/backend/internal/repository"
	"github.com/dormitory-dev/duty-roster/backend/internal/seed"
)

// Тестам нужна настоящая база: go test -tags integration с заданным TEST_DATABASE_DSN.
func newTestRepository(t *testing.T) (*repository.Repository, *sql.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN не задан, пропускаем интеграционный тест")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	if err := db.Ping(); err != nil {
		t.Skipf("база данных недоступна: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	repo := repository.NewRepository(cfg, db)
	require.NoError(t, repo.EnsureSchema())
	require.NoError(t, seed.SeedRooms(repo))

	return repo, db
}

func mustDate(t *testing.T, s string) domain.Date {
	t.Helper()

	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

// cleanupDutyDays удаляет дежурства за использованные тестом даты.
func cleanupDutyDays(t *testing.T, db *sql.DB, dates ...string) {
	t.Cleanup(func() {
		for _, date := range dates {
			db.Exec(`DELETE FROM duty_day WHERE duty_date = $1`, date)
		}
	})
}

func TestSeedRoomsIdempotent(t *testing.T) {
	repo, _ := newTestRepository(t)

	before, err := repo.CountRooms()
	require.NoError(t, err)
	require.EqualValues(t, 152, before)

	// Повторный запуск не должен ничего вставить
	require.NoError(t, seed.SeedRooms(repo))

	after, err := repo.CountRooms()
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestGetAllRooms(t *testing.T) {
	repo, _ := newTestRepository(t)

	rooms, err := repo.GetAllRooms()
	require.NoError(t, err)
	require.Len(t, rooms, 152)

	// Отсортированы по номеру, этажи соответствуют границам
	require.EqualValues(t, 13, rooms[0].Number)
	require.EqualValues(t, 2, rooms[0].Floor)
	require.EqualValues(t, 164, rooms[len(rooms)-1].Number)
	require.EqualValues(t, 5, rooms[len(rooms)-1].Floor)
}

func TestCreateAndGetDutyDay(t *testing.T) {
	repo, db := newTestRepository(t)
	cleanupDutyDays(t, db, "2031-01-10")

	dd := &domain.DutyDay{
		DutyDate: mustDate(t, "2031-01-10"),
		Floor:    2,
		Rooms:    []int32{13, 14},
	}
	require.NoError(t, repo.CreateDutyDay(dd))
	require.NotZero(t, dd.ID)

	got, err := repo.GetDutyDayByID(dd.ID)
	require.NoError(t, err)
	require.Equal(t, "2031-01-10", got.DutyDate.String())
	require.EqualValues(t, 2, got.Floor)
	require.False(t, got.IsDone)
	require.Nil(t, got.PhotoURL)
	require.Nil(t, got.ReportRoomNumber)
	require.Equal(t, []int32{13, 14}, got.Rooms)
}

func TestCreateDuplicateDate(t *testing.T) {
	repo, db := newTestRepository(t)
	cleanupDutyDays(t, db, "2031-01-11")

	first := &domain.DutyDay{DutyDate: mustDate(t, "2031-01-11"), Floor: 3, Rooms: []int32{51}}
	require.NoError(t, repo.CreateDutyDay(first))

	second := &domain.DutyDay{DutyDate: mustDate(t, "2031-01-11"), Floor: 4, Rooms: []int32{89}}
	err := repo.CreateDutyDay(second)
	require.ErrorIs(t, err, repository.ErrDuplicateDutyDate)

	// Вторая строка не должна была появиться
	got, err := repo.GetDutyDayByDate(mustDate(t, "2031-01-11"))
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.EqualValues(t, 3, got.Floor)
}

func TestCreateUnknownRoom(t *testing.T) {
	repo, db := newTestRepository(t)
	cleanupDutyDays(t, db, "2031-01-12")

	dd := &domain.DutyDay{DutyDate: mustDate(t, "2031-01-12"), Floor: 2, Rooms: []int32{13, 9999}}
	err := repo.CreateDutyDay(dd)
	require.ErrorIs(t, err, repository.ErrUnknownRoom)

	_, err = repo.GetDutyDayByDate(mustDate(t, "2031-01-12"))
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	dd := &domain.DutyDay{
		ID:       999999999,
		DutyDate: mustDate(t, "2031-01-13"),
		Floor:    2,
		Rooms:    []int32{13},
	}
	require.ErrorIs(t, repo.UpdateDutyDay(dd), sql.ErrNoRows)
}

func TestUpdateReplacesRoomsWholesale(t *testing.T) {
	repo, db := newTestRepository(t)
	cleanupDutyDays(t, db, "2031-01-14", "2031-01-15")

	dd := &domain.DutyDay{DutyDate: mustDate(t, "2031-01-14"), Floor: 2, Rooms: []int32{13, 14}}
	require.NoError(t, repo.CreateDutyDay(dd))

	dd.DutyDate = mustDate(t, "2031-01-15")
	dd.Floor = 3
	dd.Rooms = []int32{51}
	require.NoError(t, repo.UpdateDutyDay(dd))

	got, err := repo.GetDutyDayByID(dd.ID)
	require.NoError(t, err)
	require.Equal(t, "2031-01-15", got.DutyDate.String())
	require.EqualValues(t, 3, got.Floor)
	require.Equal(t, []int32{51}, got.Rooms)
}

func TestUpdateDuplicateDate(t *testing.T) {
	repo, db := newTestRepository(t)
	cleanupDutyDays(t, db, "2031-01-16", "2031-01-17")

	first := &domain.DutyDay{DutyDate: mustDate(t, "2031-01-16"), Floor: 2, Rooms: []int32{13}}
	require.NoError(t, repo.CreateDutyDay(first))

	second := &domain.DutyDay{DutyDate: mustDate(t, "2031-01-17"), Floor: 2, Rooms: []int32{14}}
	require.NoError(t, repo.CreateDutyDay(second))

	// Перенос на ту же дату не считается конфликтом с самим собой
	require.NoError(t, repo.UpdateDutyDay(second))

	second.DutyDate = mustDate(t, "2031-01-16")
	require.ErrorIs(t, repo.UpdateDutyDay(second), repository.ErrDuplicateDutyDate)
}

func TestDeleteCascadesToRooms(t *testing.T) {
	repo, db := newTestRepository(t)
	cleanupDutyDays(t, db, "2031-01-18")

	dd := &domain.DutyDay{DutyDate: mustDate(t, "2031-01-18"), Floor: 5, Rooms: []int32{127, 128}}
	require.NoError(t, repo.CreateDutyDay(dd))

	require.NoError(t, repo.DeleteDutyDay(dd.ID))

	_, err := repo.GetDutyDayByID(dd.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)

	var edges int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM duty_room WHERE duty_day_id = $1`, dd.ID).Scan(&edges))
	require.Zero(t, edges)

	require.ErrorIs(t, repo.DeleteDutyDay(dd.ID), sql.ErrNoRows)
}

func TestUpdateDutyReport(t *testing.T) {
	repo, db := newTestRepository(t)
	cleanupDutyDays(t, db, "2031-01-19")

	dd := &domain.DutyDay{DutyDate: mustDate(t, "2031-01-19"), Floor: 4, Rooms: []int32{89, 90}}
	require.NoError(t, repo.CreateDutyDay(dd))

	photoURL := "https://minio.local/duty-reports/report.jpg?signature=abc"
	reportRoom := int32(90)
	dd.IsDone = true
	dd.PhotoURL = &photoURL
	dd.ReportRoomNumber = &reportRoom
	require.NoError(t, repo.UpdateDutyReport(dd))

	got, err := repo.GetDutyDayByID(dd.ID)
	require.NoError(t, err)
	require.True(t, got.IsDone)
	require.NotNil(t, got.PhotoURL)
	require.Equal(t, photoURL, *got.PhotoURL)
	require.NotNil(t, got.ReportRoomNumber)
	require.EqualValues(t, 90, *got.ReportRoomNumber)

	// Отчёт без новой фотографии не трогает прежнюю ссылку
	got.IsDone = false
	require.NoError(t, repo.UpdateDutyReport(got))

	again, err := repo.GetDutyDayByID(dd.ID)
	require.NoError(t, err)
	require.False(t, again.IsDone)
	require.NotNil(t, again.PhotoURL)
	require.Equal(t, photoURL, *again.PhotoURL)
}

func TestScheduleForPeriod(t *testing.T) {
	repo, db := newTestRepository(t)
	cleanupDutyDays(t, db, "2031-02-01", "2031-02-02")

	first := &domain.DutyDay{DutyDate: mustDate(t, "2031-02-01"), Floor: 2, Rooms: []int32{13, 14}}
	require.NoError(t, repo.CreateDutyDay(first))

	second := &domain.DutyDay{DutyDate: mustDate(t, "2031-02-02"), Floor: 3, Rooms: []int32{51}}
	require.NoError(t, repo.CreateDutyDay(second))

	// Окно в один день
	entries, err := repo.GetScheduleForPeriod(mustDate(t, "2031-02-01"), mustDate(t, "2031-02-01"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "2031-02-01", entries[0].DutyDate.String())
	require.EqualValues(t, 2, entries[0].Floor)
	require.Equal(t, []int32{13, 14}, entries[0].Rooms)

	// Обе границы включительно
	entries, err = repo.GetScheduleForPeriod(mustDate(t, "2031-02-01"), mustDate(t, "2031-02-02"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Пустое окно
	entries, err = repo.GetScheduleForPeriod(mustDate(t, "2031-02-10"), mustDate(t, "2031-02-11"))
	require.NoError(t, err)
	require.Empty(t, entries)
}
