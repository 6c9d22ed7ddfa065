package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ozfortress/bookerbot/internal/demos"
	"github.com/ozfortress/bookerbot/internal/discord"
	"github.com/ozfortress/bookerbot/internal/members"
	"github.com/ozfortress/bookerbot/internal/ssc"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	servers *ssc.ServerList
	listErr error

	created   *ssc.Booking
	createErr error

	booking *ssc.Booking
	getErr  error

	deleteErr error
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListServers(context.Context) (*ssc.ServerList, error) {
	f.record("list")
	return f.servers, f.listErr
}

func (f *fakeAPI) CreateBooking(_ context.Context, user string, _ int) (*ssc.Booking, error) {
	f.record("create " + user)
	return f.created, f.createErr
}

func (f *fakeAPI) GetBooking(_ context.Context, user string) (*ssc.Booking, error) {
	f.record("get " + user)
	return f.booking, f.getErr
}

func (f *fakeAPI) DeleteBooking(_ context.Context, user string) error {
	f.record("delete " + user)
	return f.deleteErr
}

type sentMessage struct {
	dm     bool // SendDirectMessage, target: id пользователя
	target string
	text   string
}

type fakeChat struct {
	mu       sync.Mutex
	sent     []sentMessage
	activity []string
	channels map[string]string
	users    []discord.User
}

func (f *fakeChat) SendMessage(_ context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{target: channelID, text: content})
	return nil
}

func (f *fakeChat) SendDirectMessage(_ context.Context, userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{dm: true, target: userID, text: content})
	return nil
}

func (f *fakeChat) SetActivity(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity = append(f.activity, text)
	return nil
}

func (f *fakeChat) ChannelName(id string) (string, bool) {
	name, ok := f.channels[id]
	return name, ok
}

func (f *fakeChat) Users() []discord.User { return f.users }

func (f *fakeChat) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeChat) Activity() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.activity...)
}

const demoRoot = "https://demos.example.org"

func newTestBot(t *testing.T, api *fakeAPI, chat *fakeChat) *BookerBot {
	t.Helper()
	if chat.channels == nil {
		chat.channels = map[string]string{"c-book": "bookings", "c-general": "general"}
	}
	links, err := demos.New(demoRoot, "discord")
	require.NoError(t, err)
	return New(api, chat, members.NewMatcher(chat, members.DefaultMargin), links, Options{
		Channels:     []string{"bookings"},
		BookingHours: 3,
		PollInterval: 10 * time.Millisecond,
	})
}

var bob = discord.User{ID: "u1", Username: "bob", Discriminator: "1234"}

// guildMsg: сообщение от bob в канале гильдии.
func guildMsg(channelID, content string) discord.Message {
	return discord.Message{ID: "m1", ChannelID: channelID, GuildID: "g1", Author: bob, Content: content}
}

func dmMsg(content string) discord.Message {
	return discord.Message{ID: "m2", ChannelID: "dm-u1", Author: bob, Content: content}
}

func statusErr(code int, body string) error {
	return &ssc.StatusError{Op: "test", StatusCode: code, Body: []byte(body)}
}

