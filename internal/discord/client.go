package discord

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type Config struct {
	Token      string
	Intents    int
	GatewayURL string
	APIURL     string
	HTTPClient *http.Client
}

var ErrNotConnected = errors.New("discord: not connected")

type Client struct {
	token      string
	intents    int
	gatewayURL string
	apiURL     string
	http       *http.Client
	dialer     *websocket.Dialer

	state *State

	mu        sync.Mutex // conn, сессия, hbStop
	conn      *websocket.Conn
	sessionID string
	resumeURL string
	self      User
	hbStop    chan struct{}
	done      chan struct{}

	wmu    sync.Mutex // сериализует запись в websocket
	seq    atomic.Int64
	acked  atomic.Bool
	closed atomic.Bool
	ready  atomic.Bool

	dmMu sync.Mutex
	dms  map[string]string // user id -> id DM-канала

	// "События". OnMessage вызывается из readLoop: долгую работу уносить в горутину.
	OnConnecting   func()
	OnReady        func(User)
	OnMessage      func(Message)
	OnDisconnected func()
	OnError        func(error)
}

func New(cfg Config) *Client {
	intents := cfg.Intents
	if intents == 0 {
		intents = DefaultIntents
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		token:      cfg.Token,
		intents:    intents,
		gatewayURL: cfg.GatewayURL,
		apiURL:     cfg.APIURL,
		http:       hc,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		state: NewState(),
		dms:   make(map[string]string),
	}
}

// Connect устанавливает WebSocket, проходит HELLO/IDENTIFY и запускает readLoop.
// Контекст можно отменить для мягкого выхода из readLoop.
func (c *Client) Connect(ctx context.Context) error {
	if c.OnConnecting != nil {
		c.OnConnecting()
	}
	c.closed.Store(false)

	conn, err := c.dialAndHandshake(ctx)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.done = done
	c.mu.Unlock()

	go c.readLoop(ctx, conn, done)
	return nil
}

// Disconnect закрывает соединение без реконнекта.
func (c *Client) Disconnect() {
	c.closed.Store(true)
	c.ready.Store(false)
	c.closeConn(websocket.CloseNormalClosure)
}

// Done закрывается, когда readLoop завершился (nil до Connect).
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Client) IsConnected() bool {
	return c.ready.Load() && !c.closed.Load()
}

func (c *Client) State() *State {
	return c.state
}

func (c *Client) Self() User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self
}

// ChannelName: имя канала гильдии из кэша.
func (c *Client) ChannelName(channelID string) (string, bool) {
	return c.state.ChannelName(channelID)
}

// Users: все известные участники всех гильдий.
func (c *Client) Users() []User {
	return c.state.Users()
}

func (c *Client) report(err error) {
	if err != nil && c.OnError != nil {
		c.OnError(err)
	}
}
