package session

import "time"

// Session — явное состояние «кто работает с данными». Создаётся при старте
// (после аутентификации во внешнем слое) и передаётся в цикл пересчёта и в
// хранилище; глобального синглтона нет намеренно.
type Session struct {
	OwnerID  int64
	Location *time.Location
}

func New(ownerID int64, loc *time.Location) *Session {
	if loc == nil {
		loc = time.UTC
	}
	return &Session{OwnerID: ownerID, Location: loc}
}

// Today — текущая дата в часовом поясе центра, усечённая до дня.
func (s *Session) Today() time.Time {
	now := time.Now().In(s.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
