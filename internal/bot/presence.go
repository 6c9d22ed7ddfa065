package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/ozfortress/bookerbot/internal/logger"
	"github.com/ozfortress/bookerbot/internal/ssc"
)

// PresenceText строит строку статуса бота, сколько серверов без брони.
func PresenceText(servers []ssc.Server) string {
	free := 0
	for _, s := range servers {
		if s.Booking == nil {
			free++
		}
	}
	return fmt.Sprintf("%d servers available", free)
}

// StartPresence запускает периодическое обновление статуса. Первый опрос сразу,
// дальше раз в PollInterval. Повторные вызовы ничего не делают, до Start тоже.
func (b *BookerBot) StartPresence() {
	b.mu.Lock()
	if b.polling || b.ctx == nil || b.ctx.Err() != nil {
		b.mu.Unlock()
		return
	}
	b.polling = true
	ctx := b.ctx
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		logger.Infof("presence poller started (every %s)", b.pollEvery)

		b.updatePresence(ctx)
		ticker := time.NewTicker(b.pollEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Infof("presence poller stopped")
				return
			case <-ticker.C:
				b.updatePresence(ctx)
			}
		}
	}()
}

// updatePresence: одна итерация. Ошибки только логируются, следующий тик попробует снова.
func (b *BookerBot) updatePresence(ctx context.Context) {
	list, err := b.api.ListServers(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.WithError(err).Warn("presence: list servers")
		}
		return
	}
	text := PresenceText(list.Servers)
	if err := b.chat.SetActivity(text); err != nil {
		logger.WithError(err).Warn("presence: set activity")
		return
	}
	logger.Debugf("presence: %s", text)
}
