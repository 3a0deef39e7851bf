package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
)

// dutyDateTaken проверяет, занята ли дата другим дежурством. excludeID = 0 при создании.
func dutyDateTaken(ctx context.Context, tx *sql.Tx, date domain.Date, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM duty_day WHERE duty_date = $1 AND id <> $2)
	`

	var taken bool
	if err := tx.QueryRowContext(ctx, query, date, excludeID).Scan(&taken); err != nil {
		return false, err
	}

	return taken, nil
}

func roomsExist(ctx context.Context, tx *sql.Tx, rooms []int32) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM room WHERE number = $1)
	`

	for _, number := range rooms {
		var exists bool
		if err := tx.QueryRowContext(ctx, query, number).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}

	return true, nil
}

func (r *Repository) CreateDutyDay(dd *domain.DutyDay) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	taken, err := dutyDateTaken(ctx, tx, dd.DutyDate, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateDutyDate
	}

	exist, err := roomsExist(ctx, tx, dd.Rooms)
	if err != nil {
		return err
	}
	if !exist {
		return ErrUnknownRoom
	}

	query := `
		INSERT INTO duty_day (duty_date, floor)
		VALUES ($1, $2)
		RETURNING id, is_done
	`
	if err := tx.QueryRowContext(ctx, query, dd.DutyDate, dd.Floor).Scan(&dd.ID, &dd.IsDone); err != nil {
		return err
	}

	query = `
		INSERT INTO duty_room (duty_day_id, room_number)
		VALUES ($1, $2)
	`
	for _, number := range dd.Rooms {
		if _, err := tx.ExecContext(ctx, query, dd.ID, number); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdateDutyDay полностью заменяет дату, этаж и набор комнат одной транзакцией,
// чтобы дежурство ни в какой момент не осталось без комнат.
func (r *Repository) UpdateDutyDay(dd *domain.DutyDay) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	taken, err := dutyDateTaken(ctx, tx, dd.DutyDate, dd.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateDutyDate
	}

	exist, err := roomsExist(ctx, tx, dd.Rooms)
	if err != nil {
		return err
	}
	if !exist {
		return ErrUnknownRoom
	}

	query := `
		UPDATE duty_day
		SET duty_date = $1, floor = $2
		WHERE id = $3
		RETURNING is_done
	`
	if err := tx.QueryRowContext(ctx, query, dd.DutyDate, dd.Floor, dd.ID).Scan(&dd.IsDone); err != nil {
		return err
	}

	query = `
		DELETE FROM duty_room WHERE duty_day_id = $1
	`
	if _, err := tx.ExecContext(ctx, query, dd.ID); err != nil {
		return err
	}

	query = `
		INSERT INTO duty_room (duty_day_id, room_number)
		VALUES ($1, $2)
	`
	for _, number := range dd.Rooms {
		if _, err := tx.ExecContext(ctx, query, dd.ID, number); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdateDutyReport записывает поля отчёта. Состав комнат не трогает.
func (r *Repository) UpdateDutyReport(dd *domain.DutyDay) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE duty_day
		SET is_done = $1, photo_url = $2, report_room_number = $3
		WHERE id = $4
		RETURNING duty_date, floor
	`

	args := []any{dd.IsDone, dd.PhotoURL, dd.ReportRoomNumber, dd.ID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&dd.DutyDate, &dd.Floor); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteDutyDay(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM duty_day WHERE id = $1
	`

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) GetDutyDayByID(id int64) (*domain.DutyDay, error) {
	query := `
		SELECT dd.id, dd.duty_date, dd.floor, dd.is_done, dd.photo_url, dd.report_room_number, dr.room_number
		FROM duty_day dd
		LEFT JOIN duty_room dr ON dd.id = dr.duty_day_id
		WHERE dd.id = $1
		ORDER BY dr.room_number
	`

	return r.getDutyDay(query, id)
}

func (r *Repository) GetDutyDayByDate(date domain.Date) (*domain.DutyDay, error) {
	query := `
		SELECT dd.id, dd.duty_date, dd.floor, dd.is_done, dd.photo_url, dd.report_room_number, dr.room_number
		FROM duty_day dd
		LEFT JOIN duty_room dr ON dd.id = dr.duty_day_id
		WHERE dd.duty_date = $1
		ORDER BY dr.room_number
	`

	return r.getDutyDay(query, date)
}

func (r *Repository) getDutyDay(query string, arg any) (*domain.DutyDay, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dds, err := scanDutyDays(rows)
	if err != nil {
		return nil, err
	}
	if len(dds) == 0 {
		return nil, sql.ErrNoRows
	}

	return dds[0], nil
}

func (r *Repository) GetAllDutyDays() ([]*domain.DutyDay, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT dd.id, dd.duty_date, dd.floor, dd.is_done, dd.photo_url, dd.report_room_number, dr.room_number
		FROM duty_day dd
		LEFT JOIN duty_room dr ON dd.id = dr.duty_day_id
		ORDER BY dd.id, dr.room_number
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDutyDays(rows)
}

// GetScheduleForPeriod возвращает расписание за период, обе границы включительно.
func (r *Repository) GetScheduleForPeriod(start, end domain.Date) ([]*domain.ScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT dd.id, dd.duty_date, dd.floor, dr.room_number
		FROM duty_day dd
		LEFT JOIN duty_room dr ON dd.id = dr.duty_day_id
		WHERE dd.duty_date >= $1 AND dd.duty_date <= $2
		ORDER BY dd.duty_date, dr.room_number
	`

	rows, err := r.dbpool.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.ScheduleEntry, 0)
	var lastID int64

	for rows.Next() {
		var row struct {
			ID         int64
			DutyDate   domain.Date
			Floor      int32
			RoomNumber sql.NullInt32
		}

		if err := rows.Scan(&row.ID, &row.DutyDate, &row.Floor, &row.RoomNumber); err != nil {
			return nil, err
		}

		if len(entries) == 0 || row.ID != lastID {
			entries = append(entries, &domain.ScheduleEntry{
				DutyDate: row.DutyDate,
				Floor:    row.Floor,
				Rooms:    make([]int32, 0, 2),
			})
			lastID = row.ID
		}

		if row.RoomNumber.Valid {
			entry := entries[len(entries)-1]
			entry.Rooms = append(entry.Rooms, row.RoomNumber.Int32)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// scanDutyDays собирает строки JOIN-запроса в дежурства со списками комнат.
func scanDutyDays(rows *sql.Rows) ([]*domain.DutyDay, error) {
	ddsMap := make(map[int64]*domain.DutyDay)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID               int64
			DutyDate         domain.Date
			Floor            int32
			IsDone           bool
			PhotoURL         sql.NullString
			ReportRoomNumber sql.NullInt32
			RoomNumber       sql.NullInt32
		}

		dst := []any{&row.ID, &row.DutyDate, &row.Floor, &row.IsDone, &row.PhotoURL, &row.ReportRoomNumber, &row.RoomNumber}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		dd, exists := ddsMap[row.ID]
		if !exists {
			dd = &domain.DutyDay{
				ID:       row.ID,
				DutyDate: row.DutyDate,
				Floor:    row.Floor,
				IsDone:   row.IsDone,
				Rooms:    make([]int32, 0, 2),
			}
			if row.PhotoURL.Valid {
				dd.PhotoURL = &row.PhotoURL.String
			}
			if row.ReportRoomNumber.Valid {
				dd.ReportRoomNumber = &row.ReportRoomNumber.Int32
			}
			ddsMap[row.ID] = dd
			order = append(order, row.ID)
		}

		if row.RoomNumber.Valid {
			dd.Rooms = append(dd.Rooms, row.RoomNumber.Int32)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	dds := make([]*domain.DutyDay, 0, len(order))
	for _, id := range order {
		dds = append(dds, ddsMap[id])
	}

	return dds, nil
}
