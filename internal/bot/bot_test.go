package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozfortress/bookerbot/internal/ssc"
)

func TestPresencePollsImmediatelyAndRepeats(t *testing.T) {
	api := &fakeAPI{servers: &ssc.ServerList{Servers: []ssc.Server{
		{Name: "A"},
		{Name: "B", Booking: &ssc.Booking{User: "bob"}},
	}}}
	chat := &fakeChat{}
	b := newTestBot(t, api, chat)
	require.NoError(t, b.Start(context.Background()))

	b.StartPresence()
	b.StartPresence() // второй READY не плодит поллеры

	require.Eventually(t, func() bool { return len(chat.Activity()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	b.Stop()

	for _, text := range chat.Activity() {
		assert.Equal(t, "1 servers available", text)
	}
	n := len(chat.Activity())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, len(chat.Activity()), "poller must stop with the bot")
}

func TestPresenceErrorsAreSkipped(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("down")}
	chat := &fakeChat{}
	b := newTestBot(t, api, chat)
	require.NoError(t, b.Start(context.Background()))

	b.StartPresence()
	require.Eventually(t, func() bool { return len(api.Calls()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	b.Stop()

	assert.Empty(t, chat.Activity())
}

func TestPresenceBeforeStartIsNoop(t *testing.T) {
	api := &fakeAPI{servers: &ssc.ServerList{}}
	b := newTestBot(t, api, &fakeChat{})

	b.StartPresence()
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, api.Calls())
}

func TestStartTwice(t *testing.T) {
	b := newTestBot(t, &fakeAPI{}, &fakeChat{})
	require.NoError(t, b.Start(context.Background()))
	assert.Error(t, b.Start(context.Background()))
	b.Stop()
	b.Stop()
}

func TestSpawnWaitsForHandlers(t *testing.T) {
	api := &fakeAPI{deleteErr: nil}
	chat := &fakeChat{}
	b := newTestBot(t, api, chat)
	require.NoError(t, b.Start(context.Background()))

	for i := 0; i < 5; i++ {
		b.spawn(guildMsg("c-book", "!unbook"))
	}
	b.Stop()

	assert.Len(t, api.Calls(), 5)
	assert.Len(t, chat.Sent(), 5)

	// после Stop сообщения не принимаются
	b.spawn(guildMsg("c-book", "!unbook"))
	assert.Len(t, api.Calls(), 5)
}

type panicAPI struct{ fakeAPI }

func (p *panicAPI) DeleteBooking(context.Context, string) error { panic("boom") }

func TestSpawnRecoversPanic(t *testing.T) {
	chat := &fakeChat{}
	b := newTestBot(t, &fakeAPI{}, chat)
	b.api = &panicAPI{}
	require.NoError(t, b.Start(context.Background()))

	b.spawn(guildMsg("c-book", "!unbook"))
	b.spawn(guildMsg("c-book", "!help"))
	b.Stop()

	sent := chat.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, HelpMessage, sent[0].text)
}
