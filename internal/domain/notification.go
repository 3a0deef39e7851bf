package domain

// ReportNotification — сообщение в очереди уведомлений: резидент отправил отчёт о дежурстве.
type ReportNotification struct {
	DutyDate         Date    `json:"dutyDate"`
	Floor            int32   `json:"floor"`
	Rooms            []int32 `json:"rooms"`
	ReportRoomNumber *int32  `json:"reportRoomNumber"`
	IsDone           bool    `json:"isDone"`
	PhotoURL         *string `json:"photoUrl"`
}
