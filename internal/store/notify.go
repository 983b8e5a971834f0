package store

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const changeChannel = "table_change"

// ListenChanges — подписка на LISTEN/NOTIFY канал table_change.
// Payload уведомления — имя таблицы; содержимое изменения не передаётся,
// сигнал лишь запускает полный пересчёт. Блокируется до отмены ctx.
func ListenChanges(ctx context.Context, dsn string, log *zap.SugaredLogger, onChange func(table string)) error {
	listener := pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warnw("событие listener", "event", ev, "err", err)
		}
	})
	defer func() { _ = listener.Close() }()

	if err := listener.Listen(changeChannel); err != nil {
		return err
	}
	log.Infow("подписка на изменения активна", "channel", changeChannel)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				// nil приходит после переподключения: уведомления могли
				// потеряться, поэтому дёргаем пересчёт принудительно.
				onChange("")
				continue
			}
			onChange(n.Extra)
		case <-time.After(90 * time.Second):
			go func() { _ = listener.Ping() }()
		}
	}
}
