package ssc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const Version = "v1"

type Conf struct {
	Endpoint string
	Key      string
	Timeout  time.Duration
}

// Client: клиент REST API управления серверами (SSC). Состояния не держит,
// безопасен для одновременного использования из разных горутин.
type Client struct {
	http    *http.Client
	baseURL string
	key     string
}

type Server struct {
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	Address       string   `json:"address"`
	ConnectString string   `json:"connect-string"`
	Booking       *Booking `json:"booking"`
}

type Booking struct {
	User   string  `json:"user"`
	Server *Server `json:"server,omitempty"`
}

type ServerList struct {
	Servers []Server `json:"servers"`
}

// PathSafe убирает все '/' из имени пользователя: бэкенд не умеет их разбирать
// даже в экранированном виде.
func PathSafe(user string) string {
	return strings.ReplaceAll(user, "/", "")
}

// Создает новый клиент SSC
func New(endpoint, key string) *Client {
	return NewFromConf(Conf{Endpoint: endpoint, Key: key})
}

// Создает новый клиент SSC из конфигурации
func NewFromConf(conf Conf) *Client {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(conf.Endpoint, "/") + "/api/" + Version,
		key:     conf.Key,
	}
}

// ListServers: GET /servers/
func (c *Client) ListServers(ctx context.Context) (*ServerList, error) {
	var out ServerList
	if err := c.do(ctx, "ssc.ListServers", http.MethodGet, "/servers/", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBooking: POST /bookings/. 409: уже есть бронь, 500 со statusMessage
// "No server available": свободных серверов нет (см. IsConflict, IsNoServerAvailable).
func (c *Client) CreateBooking(ctx context.Context, user string, hours int) (*Booking, error) {
	q := url.Values{}
	q.Set("user", PathSafe(user))
	q.Set("hours", strconv.Itoa(hours))

	var out Booking
	if err := c.do(ctx, "ssc.CreateBooking", http.MethodPost, "/bookings/", q, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBooking: GET /bookings/{user}/. 404: активной брони нет.
func (c *Client) GetBooking(ctx context.Context, user string) (*Booking, error) {
	var out Booking
	if err := c.do(ctx, "ssc.GetBooking", http.MethodGet, bookingPath(user), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBooking: DELETE /bookings/{user}/. Успех только 204 (тела нет), 404: брони нет.
func (c *Client) DeleteBooking(ctx context.Context, user string) error {
	return c.do(ctx, "ssc.DeleteBooking", http.MethodDelete, bookingPath(user), nil, http.StatusNoContent, nil)
}

func bookingPath(user string) string {
	return "/bookings/" + url.PathEscape(PathSafe(user)) + "/"
}

// maxBodySize: предел тела ответа. Превышение на ожидаемом коде даёт ErrBodyTooLarge.
const maxBodySize = 1 << 20

var ErrBodyTooLarge = errors.New("response body too large")

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, want int, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.key)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	tooLarge := len(body) > maxBodySize
	if tooLarge {
		body = body[:maxBodySize]
	}

	if resp.StatusCode != want {
		// для лога хватит и обрезанного тела
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: body}
	}
	if tooLarge {
		return fmt.Errorf("%s: %w (limit %d bytes)", op, ErrBodyTooLarge, maxBodySize)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}
