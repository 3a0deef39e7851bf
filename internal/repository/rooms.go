package repository

import (
	"context"
	"time"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
)

func (r *Repository) CountRooms() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT count(*) FROM room
	`

	var count int64
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// InsertRooms вставляет банк комнат одной транзакцией.
func (r *Repository) InsertRooms(rooms []domain.Room) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO room (number, floor)
		VALUES ($1, $2)
	`
	for _, room := range rooms {
		if _, err := tx.ExecContext(ctx, query, room.Number, room.Floor); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetAllRooms() ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT number, floor FROM room ORDER BY number
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room := &domain.Room{}
		if err := rows.Scan(&room.Number, &room.Floor); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}
