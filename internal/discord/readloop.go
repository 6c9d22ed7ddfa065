package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const maxBackoff = 30 * time.Second

var (
	errReconnect      = errors.New("discord: server requested reconnect")
	errInvalidSession = errors.New("discord: invalid session")
)

// коды закрытия, после которых переподключаться бессмысленно (токен, интенты, версия)
var fatalCloseCodes = map[int]bool{
	4004: true, // authentication failed
	4010: true, // invalid shard
	4011: true, // sharding required
	4012: true, // invalid API version
	4013: true, // invalid intents
	4014: true, // disallowed intents
}

// sessionCloseCodes: сессию нельзя возобновить, нужен новый IDENTIFY
var sessionCloseCodes = map[int]bool{
	4007: true, // invalid seq
	4009: true, // session timed out
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer func() {
		c.closed.Store(true)
		c.ready.Store(false)
		c.closeConn(websocket.CloseNormalClosure)
		close(done)
		if c.OnDisconnected != nil {
			c.OnDisconnected()
		}
	}()

	// закрыть по отмене контекста
	go func() {
		select {
		case <-ctx.Done():
			c.closed.Store(true)
			c.closeConn(websocket.CloseNormalClosure)
		case <-done:
		}
	}()

	backoff := time.Second

	for {
		err := c.readUntilError(conn)
		if c.closed.Load() || ctx.Err() != nil {
			return
		}
		c.report(err)

		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			if fatalCloseCodes[ce.Code] {
				c.report(fmt.Errorf("discord: fatal close code %d, giving up", ce.Code))
				return
			}
			if sessionCloseCodes[ce.Code] {
				c.resetSession()
			}
		}

		// закрываем старое соединение, не ломая сессию
		c.ready.Store(false)
		c.closeConn(4000)

		// реконнект с backoff
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if c.closed.Load() {
				return
			}
			next, derr := c.dialAndHandshake(ctx)
			if derr == nil {
				if c.closed.Load() {
					return // Disconnect пришёл во время dial
				}
				conn = next
				backoff = time.Second
				break
			}
			c.report(fmt.Errorf("reconnect failed (wait %v): %w", backoff, derr))
			backoff = min(backoff*2, maxBackoff)
		}
	}
}

func (c *Client) readUntilError(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var p payload
		if err := json.Unmarshal(data, &p); err != nil {
			c.report(fmt.Errorf("discord: bad payload: %w", err))
			continue
		}
		if err := c.handle(conn, p); err != nil {
			return err
		}
	}
}

func (c *Client) handle(conn *websocket.Conn, p payload) error {
	switch p.Op {
	case opDispatch:
		if p.S != nil {
			c.seq.Store(*p.S)
		}
		if err := c.dispatch(conn, p.T, p.D); err != nil {
			c.report(fmt.Errorf("discord: %s: %w", p.T, err))
		}
	case opHeartbeat:
		return c.write(conn, c.heartbeatPayload())
	case opHeartbeatACK:
		c.acked.Store(true)
	case opReconnect:
		return errReconnect
	case opInvalidSession:
		var resumable bool
		_ = json.Unmarshal(p.D, &resumable)
		if !resumable {
			c.resetSession()
		}
		return errInvalidSession
	}
	return nil
}

func (c *Client) dispatch(conn *websocket.Conn, event string, d json.RawMessage) error {
	switch event {
	case "READY":
		var r readyData
		if err := json.Unmarshal(d, &r); err != nil {
			return err
		}
		c.mu.Lock()
		c.sessionID = r.SessionID
		c.resumeURL = r.ResumeGatewayURL
		c.self = r.User
		c.mu.Unlock()
		c.ready.Store(true)
		if c.OnReady != nil {
			c.OnReady(r.User)
		}

	case "RESUMED":
		c.ready.Store(true)

	case "GUILD_CREATE":
		var g Guild
		if err := json.Unmarshal(d, &g); err != nil {
			return err
		}
		if g.Unavailable {
			return nil
		}
		c.state.AddGuild(g)
		// в GUILD_CREATE больших гильдий участники приходят не все: дозапросим
		if g.MemberCount > len(g.Members) {
			return c.write(conn, outgoing{Op: opRequestGuildMembers, D: requestMembersData{
				GuildID: g.ID,
				Query:   "",
				Limit:   0,
			}})
		}

	case "GUILD_UPDATE":
		var g Guild
		if err := json.Unmarshal(d, &g); err != nil {
			return err
		}
		c.state.UpdateGuild(g)

	case "GUILD_DELETE":
		var gd guildDelete
		if err := json.Unmarshal(d, &gd); err != nil {
			return err
		}
		// unavailable: это сбой у Discord, а не выход из гильдии
		if !gd.Unavailable {
			c.state.RemoveGuild(gd.ID)
		}

	case "GUILD_MEMBERS_CHUNK":
		var chunk guildMembersChunk
		if err := json.Unmarshal(d, &chunk); err != nil {
			return err
		}
		c.state.AddMembers(chunk.GuildID, chunk.Members...)

	case "GUILD_MEMBER_ADD", "GUILD_MEMBER_UPDATE":
		var ev guildMemberEvent
		if err := json.Unmarshal(d, &ev); err != nil {
			return err
		}
		c.state.AddMembers(ev.GuildID, Member{User: ev.User})

	case "GUILD_MEMBER_REMOVE":
		var ev guildMemberEvent
		if err := json.Unmarshal(d, &ev); err != nil {
			return err
		}
		if ev.User != nil {
			c.state.RemoveMember(ev.GuildID, ev.User.ID)
		}

	case "CHANNEL_CREATE", "CHANNEL_UPDATE":
		var ch Channel
		if err := json.Unmarshal(d, &ch); err != nil {
			return err
		}
		c.state.SetChannel(ch)

	case "CHANNEL_DELETE":
		var ch Channel
		if err := json.Unmarshal(d, &ch); err != nil {
			return err
		}
		c.state.RemoveChannel(ch.ID)

	case "MESSAGE_CREATE":
		var m Message
		if err := json.Unmarshal(d, &m); err != nil {
			return err
		}
		if c.OnMessage != nil {
			c.OnMessage(m)
		}
	}
	return nil
}
