package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ozfortress/bookerbot/internal/discord"
	"github.com/ozfortress/bookerbot/internal/logger"
	"github.com/ozfortress/bookerbot/internal/ssc"
)

// одна принятая команда
type request struct {
	msg  discord.Message
	args []string // токены после имени команды
	log  *logrus.Entry
}

type command func(ctx context.Context, req *request)

// reply определяет, куда отвечает команда, в личку автору или в исходный канал.
type reply func(ctx context.Context, req *request, text string)

// commandTable: имена регистрозависимые, префикс ("!" или "/") уже срезан.
func (b *BookerBot) commandTable() map[string]command {
	return map[string]command{
		"book":    b.book,
		"unbook":  b.unbook,
		"return":  b.unbook,
		"reset":   b.unbook,
		"string":  b.connectString,
		"servers": b.servers,
		"status":  b.servers,
		"demos":   b.demos,
		"demo":    b.demos,
		"help":    b.help,
	}
}

// HandleMessage разбирает сообщение и выполняет команду. Всё, что не похоже
// на известную команду из разрешённого места, молча игнорируется.
func (b *BookerBot) HandleMessage(ctx context.Context, m discord.Message) {
	if m.Author.Bot || !b.allowed(m) {
		return
	}
	content := m.Content
	if content == "" || (content[0] != '!' && content[0] != '/') {
		return
	}
	fields := strings.Fields(content[1:])
	if len(fields) == 0 {
		return
	}
	cmd, ok := b.commands[fields[0]]
	if !ok {
		logger.Debugf("unknown command %q from %s", fields[0], m.Author.Fullname())
		return
	}

	req := &request{
		msg:  m,
		args: fields[1:],
		log: logger.WithFields(logrus.Fields{
			"command_id": uuid.NewString(),
			"command":    fields[0],
			"user":       m.Author.Fullname(),
			"channel":    m.ChannelID,
		}),
	}
	req.log.Infof("%s: %s", m.Author.Fullname(), content)
	cmd(ctx, req)
}

func (b *BookerBot) allowed(m discord.Message) bool {
	if m.IsDirect() {
		return true
	}
	name, ok := b.chat.ChannelName(m.ChannelID)
	return ok && b.channels[name]
}

// dm: ответ в личку автору. Если команда и так пришла в личку, пишем в тот же канал.
func (b *BookerBot) dm(ctx context.Context, req *request, text string) {
	var err error
	if req.msg.IsDirect() {
		err = b.chat.SendMessage(ctx, req.msg.ChannelID, text)
	} else {
		err = b.chat.SendDirectMessage(ctx, req.msg.Author.ID, text)
	}
	if err != nil {
		req.log.WithError(err).Warn("send direct message")
	}
}

func (b *BookerBot) say(ctx context.Context, req *request, text string) {
	if err := b.chat.SendMessage(ctx, req.msg.ChannelID, text); err != nil {
		req.log.WithError(err).Warn("send channel message")
	}
}

// fail логирует подробности ошибки и отвечает пользователю общей фразой.
func (b *BookerBot) fail(ctx context.Context, req *request, send reply, err error) {
	entry := req.log.WithError(err)
	var se *ssc.StatusError
	if errors.As(err, &se) {
		entry = entry.WithFields(logrus.Fields{
			"status": se.StatusCode,
			"body":   string(se.Body),
		})
	}
	entry.Error("command failed")
	send(ctx, req, MsgGenericError)
}
