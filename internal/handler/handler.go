package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/dormitory-dev/duty-roster/backend/internal/config"
	"github.com/dormitory-dev/duty-roster/backend/internal/repository"
	"github.com/dormitory-dev/duty-roster/backend/internal/storage"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	storage       *storage.Storage
	translator    ut.Translator
	notifyChannel *amqp.Channel
	redisClient   *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, store *storage.Storage, notifyCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	ru := ru.New()
	uni := ut.New(ru, ru)
	trans, _ := uni.GetTranslator("ru")
	if err := ru_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		storage:       store,
		translator:    trans,
		notifyChannel: notifyCh,
		redisClient:   rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// Аутентификация администратора
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// Админский контур: управление дежурствами. Только после входа.
	h.Mux.Route("/admin", func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/rooms", h.ListRooms)
		r.Route("/duty-days", func(r chi.Router) {
			r.Get("/", h.ListDutyDays)
			r.Post("/", h.CreateDutyDay)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.dutyDay)
				r.Get("/", h.GetDutyDay)
				r.Put("/", h.UpdateDutyDay)
				r.Delete("/", h.DeleteDutyDay)
				r.Post("/report", h.SetDutyReport)
			})
		})
	})

	// Контур бота: расписание для резидентов и отправка отчётов
	h.Mux.Route("/bot", func(r chi.Router) {
		r.Route("/schedule", func(r chi.Router) {
			r.Get("/today", h.GetScheduleToday)
			r.Get("/week", h.GetScheduleWeek)
			r.Get("/month", h.GetScheduleMonth)
		})
		r.Post("/send-report", h.SendReport)
	})
}
