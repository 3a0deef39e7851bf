package domain

// DutyDay — дежурство на одну календарную дату: этаж и 1-2 назначенные комнаты.
type DutyDay struct {
	ID               int64   `json:"id"`
	DutyDate         Date    `json:"dutyDate"`
	Floor            int32   `json:"floor"`
	IsDone           bool    `json:"isDone"`
	PhotoURL         *string `json:"photoUrl"`
	ReportRoomNumber *int32  `json:"reportRoomNumber"`
	Rooms            []int32 `json:"rooms"`
}

// ScheduleEntry — урезанное представление дежурства для бота:
// без статуса, фото и комнаты-отправителя отчёта.
type ScheduleEntry struct {
	DutyDate Date    `json:"dutyDate"`
	Floor    int32   `json:"floor"`
	Rooms    []int32 `json:"rooms"`
}
