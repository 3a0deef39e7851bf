package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
)

func (h *Handler) GetScheduleToday(w http.ResponseWriter, r *http.Request) {
	today := domain.Today()

	entries, err := h.getSchedule(r, today, today)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// На сегодня дежурство либо одно, либо его нет
	var data any
	if len(entries) > 0 {
		data = entries[0]
	}

	h.successResponse(w, r, "расписание на сегодня получено", data)
}

func (h *Handler) GetScheduleWeek(w http.ResponseWriter, r *http.Request) {
	start, end := scheduleWindow(domain.Today(), 7)

	entries, err := h.getSchedule(r, start, end)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "расписание на неделю получено", entries)
}

func (h *Handler) GetScheduleMonth(w http.ResponseWriter, r *http.Request) {
	start, end := scheduleWindow(domain.Today(), 30)

	entries, err := h.getSchedule(r, start, end)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "расписание на месяц получено", entries)
}

// scheduleWindow возвращает границы окна расписания: сегодня и сегодня + days.
func scheduleWindow(today domain.Date, days int) (domain.Date, domain.Date) {
	return today, today.AddDays(days)
}

// getSchedule читает расписание через кэш. Любой отказ Redis деградирует
// до запроса в базу, но никогда не до ошибки.
func (h *Handler) getSchedule(r *http.Request, start, end domain.Date) ([]*domain.ScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	key := h.scheduleCacheKey(ctx, start, end)

	if key != "" {
		cached, err := h.redisClient.Get(ctx, key).Result()
		switch {
		case err == nil:
			entries, decodeErr := decodeScheduleEntries([]byte(cached))
			if decodeErr == nil {
				return entries, nil
			}
			slog.Warn("повреждённая запись в кэше расписания", "key", key, "error", decodeErr)
		case !errors.Is(err, redis.Nil):
			slog.Warn("кэш расписания недоступен", "error", err)
		}
	}

	entries, err := h.repository.GetScheduleForPeriod(start, end)
	if err != nil {
		return nil, err
	}

	if key != "" {
		encoded, err := json.Marshal(entries)
		if err == nil {
			ttl := time.Duration(h.config.Redis.ScheduleCacheTTL) * time.Second
			if err := h.redisClient.Set(ctx, key, encoded, ttl).Err(); err != nil {
				slog.Warn("не удалось записать расписание в кэш", "error", err)
			}
		}
	}

	return entries, nil
}

func decodeScheduleEntries(data []byte) ([]*domain.ScheduleEntry, error) {
	entries := make([]*domain.ScheduleEntry, 0)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// scheduleCacheKey включает в ключ номер поколения, который увеличивается при
// каждой мутации: устаревшие окна умирают сразу, а не по TTL. Пустая строка
// означает, что кэш сейчас недоступен.
func (h *Handler) scheduleCacheKey(ctx context.Context, start, end domain.Date) string {
	gen, err := h.redisClient.Get(ctx, "schedule:gen").Result()
	switch {
	case errors.Is(err, redis.Nil):
		gen = "0"
	case err != nil:
		slog.Warn("кэш расписания недоступен", "error", err)
		return ""
	}

	return fmt.Sprintf("schedule:%s:%s:%s", gen, start, end)
}

func (h *Handler) bumpScheduleGeneration() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	if err := h.redisClient.Incr(ctx, "schedule:gen").Err(); err != nil {
		// Кэш и так истечёт по TTL, поэтому только предупреждаем
		slog.Warn("не удалось сбросить кэш расписания", "error", err)
	}
}

// SendReport — отчёт резидента по дате дежурства: комната и статус обязательны,
// фотография одна и необязательная.
func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReportFormMemory); err != nil {
		h.badRequest(w, r, err)
		return
	}

	dutyDate, err := domain.ParseDate(r.FormValue("duty_date"))
	if err != nil {
		h.errorResponse(w, r, "поле duty_date обязательно и должно быть датой в формате ГГГГ-ММ-ДД")
		return
	}

	reportRoom, err := strconv.ParseInt(r.FormValue("report_room_number"), 10, 32)
	if err != nil {
		h.errorResponse(w, r, "поле report_room_number обязательно и должно быть числом")
		return
	}

	isDone, err := strconv.ParseBool(r.FormValue("is_done"))
	if err != nil {
		h.errorResponse(w, r, "поле is_done обязательно и должно быть булевым")
		return
	}

	dd, err := h.repository.GetDutyDayByDate(dutyDate)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFoundResponse(w, r, "дежурство на эту дату не найдено")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	file, fh, err := r.FormFile("photo")
	switch {
	case err == nil:
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		url, err := h.storage.UploadPhoto(r.Context(), data, fh.Header.Get("Content-Type"))
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		dd.PhotoURL = &url
	case errors.Is(err, http.ErrMissingFile):
		// Без фотографии ссылка остаётся прежней
	default:
		h.badRequest(w, r, err)
		return
	}

	reportRoom32 := int32(reportRoom)
	dd.IsDone = isDone
	dd.ReportRoomNumber = &reportRoom32

	if err := h.repository.UpdateDutyReport(dd); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFoundResponse(w, r, "дежурство на эту дату не найдено")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.bumpScheduleGeneration()
	h.publishReportNotification(dd)

	h.successResponse(w, r, "отчёт принят", dd)
}

// publishReportNotification отправляет уведомление в очередь. Отчёт к этому
// моменту уже сохранён, поэтому отказ очереди клиенту не возвращается.
func (h *Handler) publishReportNotification(dd *domain.DutyDay) {
	notification := domain.ReportNotification{
		DutyDate:         dd.DutyDate,
		Floor:            dd.Floor,
		Rooms:            dd.Rooms,
		ReportRoomNumber: dd.ReportRoomNumber,
		IsDone:           dd.IsDone,
		PhotoURL:         dd.PhotoURL,
	}

	body, err := json.Marshal(notification)
	if err != nil {
		slog.Error("не удалось сериализовать уведомление об отчёте", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.notifyChannel.PublishWithContext(
		ctx,
		"",
		"report_notifications",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		slog.Error("не удалось отправить уведомление об отчёте", "error", err)
	}
}
