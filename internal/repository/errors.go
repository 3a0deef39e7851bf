package repository

import "errors"

// Проверки внутри транзакций носят рекомендательный характер: при гонке
// двух запросов последним рубежом остаются ограничения в самой базе.
var (
	ErrDuplicateDutyDate = errors.New("дежурство на эту дату уже существует")
	ErrUnknownRoom       = errors.New("одна или несколько комнат не существуют")
)
