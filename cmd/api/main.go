package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/dormitory-dev/duty-roster/backend/internal/config"
	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
	"github.com/dormitory-dev/duty-roster/backend/internal/handler"
	"github.com/dormitory-dev/duty-roster/backend/internal/repository"
	"github.com/dormitory-dev/duty-roster/backend/internal/seed"
	"github.com/dormitory-dev/duty-roster/backend/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * Создаём logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * Загружаем конфигурацию
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("не удалось загрузить конфигурацию", "error", err)
		return
	}

	/**********************************************
	 * Подключаемся к базе данных
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("не удалось создать пул соединений с базой", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open соединение не открывает, поэтому явно проверяем его ping-ом
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("не удалось подключиться к базе данных", "error", err)
		return
	}

	/**********************************************
	 * Создаём repository и схему
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	if err := repo.EnsureSchema(); err != nil {
		logger.Error("не удалось создать схему базы данных", "error", err)
		return
	}

	/**********************************************
	 * Заполняем банк комнат
	 **********************************************/
	if err := seed.SeedRooms(repo); err != nil {
		logger.Error("не удалось заполнить таблицу комнат", "error", err)
		return
	}

	/**********************************************
	 * Гарантируем наличие начального администратора
	 **********************************************/
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("не удалось захэшировать пароль администратора", "error", err)
		return
	}
	initialAdmin := &domain.Admin{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(passwordHash),
	}
	if err := repo.CreateAdmin(initialAdmin); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "admins_username_key":
				// Администратор уже существует, ничего делать не нужно
			default:
				logger.Error("не удалось создать начального администратора", "error", err)
				return
			}
		default:
			logger.Error("не удалось создать начального администратора", "error", err)
			return
		}
	}

	/**********************************************
	 * Подключаемся к объектному хранилищу
	 **********************************************/
	store, err := storage.NewStorage(cfg)
	if err != nil {
		logger.Error("не удалось создать клиент объектного хранилища", "error", err)
		return
	}

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := store.EnsureBucket(ctx); err != nil {
		logger.Error("не удалось подготовить бакет для фотоотчётов", "error", err)
		return
	}

	/**********************************************
	 * Подключаемся к rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("не удалось подключиться к rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	// Открываем канал
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("не удалось открыть канал", "error", err)
		return
	}
	defer ch.Close()

	// Объявляем очередь уведомлений
	_, err = ch.QueueDeclare(
		"report_notifications",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("не удалось объявить очередь", "error", err)
		return
	}

	/**********************************************
	 * Подключаемся к redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	/**********************************************
	 * Создаём handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, store, ch, rdb)
	if err != nil {
		logger.Error("не удалось создать handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * Запускаем HTTP-сервер
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("запускаем сервер...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("не удалось запустить сервер", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("останавливаем сервер...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("не удалось корректно остановить сервер", slog.String("error", err.Error()))
	}
	logger.Info("сервер остановлен")
}
