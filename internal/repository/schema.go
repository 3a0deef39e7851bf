package repository

import (
	"context"
	"time"
)

// Имена ограничений фиксированы явно: на них завязана обработка
// ошибок pgconn.PgError в handler.
var schemaStatements = []string{
	`
		CREATE TABLE IF NOT EXISTS room (
			number integer PRIMARY KEY,
			floor integer NOT NULL CHECK (floor BETWEEN 2 AND 5)
		)
	`,
	`
		CREATE TABLE IF NOT EXISTS duty_day (
			id bigserial PRIMARY KEY,
			duty_date date NOT NULL,
			floor integer NOT NULL CHECK (floor BETWEEN 2 AND 5),
			is_done boolean NOT NULL DEFAULT false,
			photo_url text,
			report_room_number integer,
			CONSTRAINT duty_day_duty_date_key UNIQUE (duty_date)
		)
	`,
	`
		CREATE TABLE IF NOT EXISTS duty_room (
			duty_day_id bigint NOT NULL,
			room_number integer NOT NULL,
			PRIMARY KEY (duty_day_id, room_number),
			CONSTRAINT duty_room_duty_day_id_fkey FOREIGN KEY (duty_day_id)
				REFERENCES duty_day (id) ON DELETE CASCADE,
			CONSTRAINT duty_room_room_number_fkey FOREIGN KEY (room_number)
				REFERENCES room (number)
		)
	`,
	`
		CREATE TABLE IF NOT EXISTS admins (
			id bigserial PRIMARY KEY,
			username text NOT NULL,
			password_hash text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			CONSTRAINT admins_username_key UNIQUE (username)
		)
	`,
}

// EnsureSchema создаёт таблицы при первом запуске. Выполняется в cmd/api
// до того, как сервер начнёт принимать запросы.
func (r *Repository) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return tx.Commit()
}
