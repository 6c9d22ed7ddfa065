package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"runtime"
	"time"

	"github.com/gorilla/websocket"
)

// ========================= low-level =========================

// адрес для dial: resume_gateway_url при живой сессии, иначе из конфигурации
func (c *Client) dialURL() string {
	c.mu.Lock()
	resume, session := c.resumeURL, c.sessionID
	c.mu.Unlock()

	if session == "" || resume == "" {
		return c.gatewayURL
	}
	u, err := url.Parse(resume)
	if err != nil {
		return c.gatewayURL
	}
	if u.RawQuery == "" {
		if base, err := url.Parse(c.gatewayURL); err == nil {
			u.RawQuery = base.RawQuery
		}
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// dial + HELLO + heartbeat + IDENTIFY/RESUME
func (c *Client) dialAndHandshake(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.dialURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("discord: dial: %w", err)
	}
	conn.SetReadLimit(64 << 20)

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("discord: read hello: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.Op != opHello {
		_ = conn.Close()
		return nil, fmt.Errorf("discord: expected hello, got op %d (%v)", p.Op, err)
	}
	var hello helloData
	if err := json.Unmarshal(p.D, &hello); err != nil || hello.HeartbeatInterval <= 0 {
		_ = conn.Close()
		return nil, fmt.Errorf("discord: bad hello payload: %s", p.D)
	}

	c.mu.Lock()
	c.conn = conn
	session := c.sessionID
	c.mu.Unlock()

	c.startHeartbeat(conn, time.Duration(hello.HeartbeatInterval)*time.Millisecond)

	if session != "" {
		err = c.write(conn, outgoing{Op: opResume, D: resumeData{
			Token:     c.token,
			SessionID: session,
			Seq:       c.seq.Load(),
		}})
	} else {
		c.seq.Store(0)
		err = c.write(conn, outgoing{Op: opIdentify, D: identifyData{
			Token:   c.token,
			Intents: c.intents,
			Properties: identifyProperties{
				OS:      runtime.GOOS,
				Browser: "bookerbot",
				Device:  "bookerbot",
			},
		}})
	}
	if err != nil {
		c.closeConn(websocket.CloseAbnormalClosure)
		return nil, fmt.Errorf("discord: identify: %w", err)
	}
	return conn, nil
}

func (c *Client) write(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// send пишет в текущее соединение
func (c *Client) send(op int, d any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return c.write(conn, outgoing{Op: op, D: d})
}

func (c *Client) heartbeatPayload() outgoing {
	if seq := c.seq.Load(); seq > 0 {
		return outgoing{Op: opHeartbeat, D: seq}
	}
	return outgoing{Op: opHeartbeat, D: nil}
}

// безопасно закрыть текущее соединение; code != 1000 оставляет сессию пригодной для RESUME
func (c *Client) closeConn(code int) {
	c.stopHeartbeat()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		c.wmu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, "closing"),
			time.Now().Add(500*time.Millisecond))
		c.wmu.Unlock()
		_ = conn.Close()
	}
}

func (c *Client) startHeartbeat(conn *websocket.Conn, interval time.Duration) {
	c.stopHeartbeat() // на всякий: останавливаем предыдущий
	stop := make(chan struct{})
	c.mu.Lock()
	c.hbStop = stop
	c.mu.Unlock()
	c.acked.Store(true)

	go func() {
		// первый удар: со случайной задержкой в пределах интервала
		t := time.NewTimer(time.Duration(rand.Float64() * float64(interval)))
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if !c.acked.Load() {
					// ACK на прошлый heartbeat не пришёл: соединение подвисло, readLoop реконнектит
					c.report(errors.New("discord: heartbeat not acknowledged"))
					_ = conn.Close()
					return
				}
				c.acked.Store(false)
				if err := c.write(conn, c.heartbeatPayload()); err != nil {
					_ = conn.Close()
					return
				}
				t.Reset(interval)
			}
		}
	}()
}

func (c *Client) stopHeartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hbStop != nil {
		close(c.hbStop)
		c.hbStop = nil
	}
}

func (c *Client) resetSession() {
	c.mu.Lock()
	c.sessionID = ""
	c.resumeURL = ""
	c.mu.Unlock()
	c.seq.Store(0)
}
