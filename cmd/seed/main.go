package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dormitory-dev/duty-roster/backend/internal/config"
	"github.com/dormitory-dev/duty-roster/backend/internal/repository"
	"github.com/dormitory-dev/duty-roster/backend/internal/seed"
)

// Заполняет базу тестовым расписанием для разработки.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("не удалось загрузить конфигурацию", "error", err)
		return
	}

	if cfg.Environment != "development" {
		logger.Error("тестовые данные можно загружать только в development-окружении", "environment", cfg.Environment)
		return
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("не удалось создать пул соединений с базой", "error", err)
		return
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("не удалось подключиться к базе данных", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	if err := repo.EnsureSchema(); err != nil {
		logger.Error("не удалось создать схему базы данных", "error", err)
		return
	}

	if err := seed.SeedRooms(repo); err != nil {
		logger.Error("не удалось заполнить таблицу комнат", "error", err)
		return
	}

	if err := seed.SeedDutyDays(repo); err != nil {
		logger.Error("не удалось создать тестовые дежурства", "error", err)
		return
	}

	logger.Info("тестовые данные загружены")
}
