package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPError: не-2xx ответ REST API Discord.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// SendMessage: POST /channels/{id}/messages
func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	body := map[string]string{"content": content}
	if err := c.doRequest(ctx, http.MethodPost, "/channels/"+url.PathEscape(channelID)+"/messages", body, nil); err != nil {
		return fmt.Errorf("discord.SendMessage: %w", err)
	}
	return nil
}

// SendDirectMessage открывает (или берёт из кэша) DM-канал с пользователем и пишет в него.
func (c *Client) SendDirectMessage(ctx context.Context, userID, content string) error {
	channelID, err := c.dmChannel(ctx, userID)
	if err != nil {
		return fmt.Errorf("discord.SendDirectMessage: %w", err)
	}
	return c.SendMessage(ctx, channelID, content)
}

func (c *Client) dmChannel(ctx context.Context, userID string) (string, error) {
	c.dmMu.Lock()
	id, ok := c.dms[userID]
	c.dmMu.Unlock()
	if ok {
		return id, nil
	}

	var ch Channel
	if err := c.doRequest(ctx, http.MethodPost, "/users/@me/channels", map[string]string{"recipient_id": userID}, &ch); err != nil {
		return "", err
	}

	c.dmMu.Lock()
	c.dms[userID] = ch.ID
	c.dmMu.Unlock()
	return ch.ID, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", "DiscordBot (https://github.com/ozfortress/bookerbot, 1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
