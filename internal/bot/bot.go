package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ozfortress/bookerbot/internal/demos"
	"github.com/ozfortress/bookerbot/internal/discord"
	"github.com/ozfortress/bookerbot/internal/logger"
	"github.com/ozfortress/bookerbot/internal/members"
	"github.com/ozfortress/bookerbot/internal/ssc"
)

// BookingAPI: то, что бот использует из ssc.Client.
type BookingAPI interface {
	ListServers(ctx context.Context) (*ssc.ServerList, error)
	CreateBooking(ctx context.Context, user string, hours int) (*ssc.Booking, error)
	GetBooking(ctx context.Context, user string) (*ssc.Booking, error)
	DeleteBooking(ctx context.Context, user string) error
}

// Chat: то, что бот использует из discord.Client.
type Chat interface {
	SendMessage(ctx context.Context, channelID, content string) error
	SendDirectMessage(ctx context.Context, userID, content string) error
	SetActivity(text string) error
	ChannelName(channelID string) (string, bool)
}

type Options struct {
	Channels     []string      // каналы гильдий, где бот слушает команды (личка: всегда)
	BookingHours int           // длительность брони по !book
	PollInterval time.Duration // как часто обновлять "N servers available"
}

type BookerBot struct {
	api     BookingAPI
	chat    Chat
	matcher *members.Matcher
	links   *demos.Builder

	channels  map[string]bool
	hours     int
	pollEvery time.Duration
	commands  map[string]command

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	polling bool
	wg      sync.WaitGroup
}

func New(api BookingAPI, chat Chat, matcher *members.Matcher, links *demos.Builder, opts Options) *BookerBot {
	hours := opts.BookingHours
	if hours <= 0 {
		hours = 3
	}
	every := opts.PollInterval
	if every <= 0 {
		every = time.Minute
	}
	channels := make(map[string]bool, len(opts.Channels))
	for _, ch := range opts.Channels {
		channels[ch] = true
	}

	b := &BookerBot{
		api:       api,
		chat:      chat,
		matcher:   matcher,
		links:     links,
		channels:  channels,
		hours:     hours,
		pollEvery: every,
	}
	b.commands = b.commandTable()
	return b
}

// Attach подписывает бота на события клиента Discord.
func (b *BookerBot) Attach(dc *discord.Client) {
	dc.OnConnecting = func() { logger.Infof("connecting to discord gateway...") }

	dc.OnReady = func(u discord.User) {
		logger.WithField("user", u.Fullname()).Info("discord bot connected")
		// READY приходит и после реконнекта без RESUME: поллер стартует один раз
		b.StartPresence()
	}

	dc.OnMessage = b.spawn

	dc.OnError = func(err error) { logger.WithError(err).Warn("discord gateway") }

	dc.OnDisconnected = func() { logger.Infof("discord gateway disconnected") }
}

func (b *BookerBot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx != nil {
		return errors.New("bot: already started")
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	return nil
}

// Stop гасит поллер и ждёт, пока доработают уже принятые команды.
// Повторный Stop ничего не делает.
func (b *BookerBot) Stop() {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()
	b.wg.Wait()
}

// spawn: обработка сообщения в своей горутине. Паника в обработчике логируется
// и не роняет процесс.
func (b *BookerBot) spawn(m discord.Message) {
	b.mu.Lock()
	ctx := b.ctx
	if ctx == nil || ctx.Err() != nil {
		b.mu.Unlock()
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"user":    m.Author.Fullname(),
					"content": m.Content,
				}).Errorf("panic in command handler: %v", r)
			}
		}()
		b.HandleMessage(ctx, m)
	}()
}
