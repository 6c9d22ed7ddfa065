package ssc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// NoServerAvailable: statusMessage, которым API отвечает (500), когда серверы кончились.
const NoServerAvailable = "No server available"

// StatusError: ответ API с неожиданным HTTP-кодом. Body сохраняется как есть,
// только для логов: пользователю его не показываем.
type StatusError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// StatusMessage достаёт поле statusMessage из JSON-тела ("" если его нет).
func (e *StatusError) StatusMessage() string {
	var body struct {
		StatusMessage string `json:"statusMessage"`
	}
	if json.Unmarshal(e.Body, &body) != nil {
		return ""
	}
	return body.StatusMessage
}

// TransportError: запрос не дошёл до API или ответ не дочитан (DNS, refused, таймаут).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus возвращает true, если err (или обёрнутая ошибка): StatusError с этим кодом.
func IsStatus(err error, code int) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == code
	}
	return false
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

func IsConflict(err error) bool { return IsStatus(err, http.StatusConflict) }

func IsNoServerAvailable(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		return false
	}
	return se.StatusMessage() == NoServerAvailable
}
