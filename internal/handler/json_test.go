package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dormitory-dev/duty-roster/backend/internal/config"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	h, err := NewHandler(&config.Config{}, nil, nil, nil, nil)
	require.NoError(t, err)
	return h
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSuccessResponse(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bot/schedule/today", nil)

	h.successResponse(rec, req, "готово", map[string]int{"floor": 3})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, "готово", resp.Message)
	require.NotNil(t, resp.Data)
}

func TestErrorResponseIsClientError(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/duty-days", nil)

	h.errorResponse(rec, req, "дежурство на эту дату уже существует")

	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "дежурство на эту дату уже существует", resp.Message)
	require.Nil(t, resp.Data)
}

func TestNotFoundResponse(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/duty-days/99", nil)

	h.notFoundResponse(rec, req, "дежурство не найдено")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, decodeResponse(t, rec).Success)
}

func TestBadRequestTranslatesValidationErrors(t *testing.T) {
	h := newTestHandler(t)

	var req struct {
		DutyDate string  `json:"dutyDate" validate:"required,datetime=2006-01-02"`
		Floor    int32   `json:"floor" validate:"required,gte=2,lte=5"`
		Rooms    []int32 `json:"rooms" validate:"required,min=1,max=2,dive,gte=1"`
	}
	req.DutyDate = "2025-03-01"
	req.Floor = 9
	req.Rooms = []int32{13}

	err := h.validate.Struct(req)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/admin/duty-days", nil)

	h.badRequest(rec, httpReq, err)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Message)
}

func TestRoomCountValidation(t *testing.T) {
	h := newTestHandler(t)

	var req struct {
		Rooms []int32 `json:"rooms" validate:"required,min=1,max=2,unique,dive,gte=1"`
	}

	req.Rooms = []int32{}
	require.Error(t, h.validate.Struct(req))

	req.Rooms = []int32{13, 14, 15}
	require.Error(t, h.validate.Struct(req))

	// Повторяющиеся комнаты — ошибка клиента, а не нарушение первичного ключа
	req.Rooms = []int32{13, 13}
	require.Error(t, h.validate.Struct(req))

	req.Rooms = []int32{13}
	require.NoError(t, h.validate.Struct(req))

	req.Rooms = []int32{13, 14}
	require.NoError(t, h.validate.Struct(req))
}
