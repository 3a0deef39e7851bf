package handler

type ContextKey string

var (
	AdminIDCtxKey ContextKey = "adminID"
	DutyDayCtx    ContextKey = "dutyDay"
)
