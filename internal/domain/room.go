package domain

const (
	MinFloor = 2
	MaxFloor = 5
)

type Room struct {
	Number int32 `json:"number"`
	Floor  int32 `json:"floor"`
}
