package handler

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dormitory-dev/duty-roster/backend/internal/domain"
	"github.com/dormitory-dev/duty-roster/backend/internal/repository"
)

// maxReportFormMemory ограничивает буферизацию multipart-формы с фотографиями.
const maxReportFormMemory = 32 << 20

func (h *Handler) ListDutyDays(w http.ResponseWriter, r *http.Request) {
	dds, err := h.repository.GetAllDutyDays()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "список дежурств получен", dds)
}

func (h *Handler) CreateDutyDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DutyDate string  `json:"dutyDate" validate:"required,datetime=2006-01-02"`
		Floor    int32   `json:"floor" validate:"required,gte=2,lte=5"`
		Rooms    []int32 `json:"rooms" validate:"required,min=1,max=2,unique,dive,gte=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	dutyDate, err := domain.ParseDate(req.DutyDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	dd := &domain.DutyDay{
		DutyDate: dutyDate,
		Floor:    req.Floor,
		Rooms:    req.Rooms,
	}

	if err := h.repository.CreateDutyDay(dd); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, repository.ErrDuplicateDutyDate):
			h.errorResponse(w, r, "дежурство на эту дату уже существует")
		case errors.Is(err, repository.ErrUnknownRoom):
			h.errorResponse(w, r, "одна или несколько комнат не существуют")
		case errors.As(err, &pgErr):
			// Рекомендательные проверки могли пропустить гонку, тогда
			// срабатывают ограничения базы
			switch pgErr.ConstraintName {
			case "duty_day_duty_date_key":
				h.errorResponse(w, r, "дежурство на эту дату уже существует")
			case "duty_room_room_number_fkey":
				h.errorResponse(w, r, "одна или несколько комнат не существуют")
			case "duty_room_pkey":
				h.errorResponse(w, r, "комнаты в списке не должны повторяться")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.bumpScheduleGeneration()

	h.successResponse(w, r, "дежурство создано", dd)
}

func (h *Handler) GetDutyDay(w http.ResponseWriter, r *http.Request) {
	dd := r.Context().Value(DutyDayCtx).(*domain.DutyDay)

	h.successResponse(w, r, "дежурство получено", dd)
}

func (h *Handler) UpdateDutyDay(w http.ResponseWriter, r *http.Request) {
	dd := r.Context().Value(DutyDayCtx).(*domain.DutyDay)

	var req struct {
		DutyDate string  `json:"dutyDate" validate:"required,datetime=2006-01-02"`
		Floor    int32   `json:"floor" validate:"required,gte=2,lte=5"`
		Rooms    []int32 `json:"rooms" validate:"required,min=1,max=2,unique,dive,gte=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	dutyDate, err := domain.ParseDate(req.DutyDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	dd.DutyDate = dutyDate
	dd.Floor = req.Floor
	dd.Rooms = req.Rooms

	if err := h.repository.UpdateDutyDay(dd); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, repository.ErrDuplicateDutyDate):
			h.errorResponse(w, r, "на эту дату уже назначено другое дежурство")
		case errors.Is(err, repository.ErrUnknownRoom):
			h.errorResponse(w, r, "одна или несколько комнат не существуют")
		case errors.Is(err, sql.ErrNoRows):
			h.notFoundResponse(w, r, "дежурство не найдено")
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "duty_day_duty_date_key":
				h.errorResponse(w, r, "на эту дату уже назначено другое дежурство")
			case "duty_room_room_number_fkey":
				h.errorResponse(w, r, "одна или несколько комнат не существуют")
			case "duty_room_pkey":
				h.errorResponse(w, r, "комнаты в списке не должны повторяться")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.bumpScheduleGeneration()

	h.successResponse(w, r, "дежурство обновлено", dd)
}

func (h *Handler) DeleteDutyDay(w http.ResponseWriter, r *http.Request) {
	dd := r.Context().Value(DutyDayCtx).(*domain.DutyDay)

	if err := h.repository.DeleteDutyDay(dd.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFoundResponse(w, r, "дежурство не найдено")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.bumpScheduleGeneration()

	w.WriteHeader(http.StatusNoContent)
}

// SetDutyReport — отчёт по идентификатору дежурства. Загружаются все присланные
// фотографии, но в карточке остаётся ссылка только на последнюю: админка считает
// более ранние кадры заменёнными.
func (h *Handler) SetDutyReport(w http.ResponseWriter, r *http.Request) {
	dd := r.Context().Value(DutyDayCtx).(*domain.DutyDay)

	if err := r.ParseMultipartForm(maxReportFormMemory); err != nil {
		h.badRequest(w, r, err)
		return
	}

	isDone, err := strconv.ParseBool(r.FormValue("is_done"))
	if err != nil {
		h.errorResponse(w, r, "поле is_done обязательно и должно быть булевым")
		return
	}

	var reportRoom *int32
	if v := r.FormValue("report_room_number"); v != "" {
		number, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			h.errorResponse(w, r, "некорректный номер комнаты")
			return
		}
		number32 := int32(number)
		reportRoom = &number32
	}

	for _, fh := range r.MultipartForm.File["photos"] {
		file, err := fh.Open()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		url, err := h.storage.UploadPhoto(r.Context(), data, fh.Header.Get("Content-Type"))
		if err != nil {
			// Уже загруженные файлы остаются в хранилище, компенсации нет
			h.internalServerError(w, r, err)
			return
		}
		dd.PhotoURL = &url
	}

	dd.IsDone = isDone
	if reportRoom != nil {
		dd.ReportRoomNumber = reportRoom
	}

	if err := h.repository.UpdateDutyReport(dd); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFoundResponse(w, r, "дежурство не найдено")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.bumpScheduleGeneration()

	h.successResponse(w, r, "отчёт сохранён", dd)
}
